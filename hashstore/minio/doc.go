// Package minio provides a hashstore backend for MinIO and S3-compatible
// object storage, mapping each hash field to one object.
//
// This backend trades command efficiency for zero extra infrastructure:
// hash-wide commands list (and for values, fetch) every field object. It
// works with MinIO, Ceph, Garage, SeaweedFS and AWS S3.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := miniostore.NewStore(client, "my-bucket", "hashes/")
//	m := redimap.New(hashstore.NewStaticPool(store), "sessions")
package minio
