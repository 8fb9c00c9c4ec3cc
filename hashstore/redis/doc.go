// Package redis provides a hashstore backend for Redis hashes using the
// redigo client.
//
// Every hashstore command maps onto exactly one Redis hash command (HLEN,
// HEXISTS, HGET, HSET, HDEL, HKEYS, HVALS, HGETALL, DEL), so each command
// is atomic at the server. The pool wraps redigo's connection pool; one
// connection is checked out per Acquire and returned on Release.
//
// # Basic Usage
//
//	pool := redis.NewPool("localhost:6379", func(o *redis.Options) {
//	    o.MaxActive = 16
//	    o.DialOptions = []redigo.DialOption{redigo.DialPassword("secret")}
//	})
//	defer pool.Close()
//
//	m := redimap.New(pool, "sessions")
package redis
