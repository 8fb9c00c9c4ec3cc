// Package hashstore abstracts a remote hash store behind a small command
// set and a connection pool.
//
// Conn is the command surface a backend must provide: field count,
// existence check, single and bulk field reads/writes, field deletion and
// whole-hash deletion. Pool hands out connections one operation at a time;
// callers acquire, issue commands, and release on every exit path.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process store for tests and embedding
//   - redis.Pool / redis.Conn: Redis hashes via redigo
//   - dynamo.Store: DynamoDB, one item per hash field
//   - minio.Store: S3-compatible object storage, one object per field
//
// Backends whose clients are internally pooled and safe for concurrent use
// (memory, dynamo, minio) are served through StaticPool. LimitPool wraps
// any Pool with a concurrency bound and an acquisition rate limit.
package hashstore
