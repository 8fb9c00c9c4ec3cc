// Package dynamo provides a hashstore backend on DynamoDB, storing one
// table item per hash field (partition key: hash name, sort key: field).
//
// # Basic Usage
//
//	store, err := dynamo.NewFromConfig(ctx, "redimap")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m := redimap.New(hashstore.NewStaticPool(store), "sessions")
//
// Single-field commands are atomic item operations. Bulk commands (SetAll,
// Drop) are split into BatchWriteItem requests and are not atomic across
// items; see the Store documentation.
package dynamo
