package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mypubsub"
	"github.com/MarcGrol/storefront/lib/myqueue"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/catalog"
)

func main() {
	c := context.Background()

	// A missing .env is fine: the environment is then used as is.
	_ = godotenv.Load()

	router := mux.NewRouter()

	repo, repoCleanup, err := newCatalogRepository(c)
	if err != nil {
		log.Fatalf("Error creating catalog repository: %s", err)
	}
	defer repoCleanup()

	engine := catalog.NewEngine(repo, mylog.New("catalog"), maxPageSize())
	catalog.NewService(engine).RegisterEndpoints(c, router)

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, mytime.RealNower{})
	if err != nil {
		log.Fatalf("Error creating event publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	cartStore, cartStoreCleanup, err := mystore.New[cart.CartSlot](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartStoreCleanup()

	err = cart.NewService(cartStore, engine, mytime.RealNower{}, myuuid.RealUUIDer{}, publisher).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart service: %s", err)
	}

	startWebServerBlocking(router)
}

func maxPageSize() int {
	value := os.Getenv("CATALOG_MAX_PAGE_SIZE")
	if value == "" {
		return catalog.MaxPageSize
	}
	size, err := strconv.Atoi(value)
	if err != nil || size < 1 {
		log.Fatalf("Invalid CATALOG_MAX_PAGE_SIZE %q", value)
	}
	return size
}

type catalogRepository interface {
	catalog.ProductRepository
	catalog.RecordWriter
}

// newCatalogRepository uses sqlite when CATALOG_SQLITE_PATH is set and the datastore otherwise.
func newCatalogRepository(c context.Context) (catalog.ProductRepository, func(), error) {
	var (
		repo    catalogRepository
		cleanup func()
	)

	if path := os.Getenv("CATALOG_SQLITE_PATH"); path != "" {
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening sqlite database %s: %w", path, err)
		}
		sqlRepo, err := catalog.NewSQLRepository(c, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		repo, cleanup = sqlRepo, func() { db.Close() }
	} else {
		store, storeCleanup, err := mystore.New[catalog.CatalogRecord](c)
		if err != nil {
			return nil, nil, err
		}
		repo, cleanup = catalog.NewStoreRepository(store), storeCleanup
	}

	err := seedCatalog(c, repo)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return repo, cleanup, nil
}

func seedCatalog(c context.Context, writer catalog.RecordWriter) error {
	filename := os.Getenv("CATALOG_SEED_FILE")
	if filename == "" {
		return nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", filename, err)
	}
	defer f.Close()

	count, err := catalog.Seed(c, writer, f)
	if err != nil {
		return err
	}
	log.Printf("Seeded catalog with %d products from %s", count, filename)
	return nil
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
