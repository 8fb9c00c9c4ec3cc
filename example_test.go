package redimap_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/redimap"
	"github.com/hupe1980/redimap/hashstore"
)

func ExampleMap() {
	ctx := context.Background()

	// In production, use a Redis-backed pool:
	//
	//	pool := redis.NewPool("localhost:6379")
	//	defer pool.Close()
	pool := hashstore.NewStaticPool(hashstore.NewMemoryStore())

	m := redimap.New(pool, "profile")

	if err := m.PutAll(ctx, map[string]string{
		"name": "Vanya",
		"age":  "32",
	}); err != nil {
		log.Fatal(err)
	}

	name, _, err := m.Get(ctx, "name")
	if err != nil {
		log.Fatal(err)
	}

	n, err := m.Len(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(name)
	fmt.Println(n)
	// Output:
	// Vanya
	// 2
}
