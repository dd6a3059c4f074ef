// Package minio provides a source.Source for MinIO and other S3-compatible
// object stores.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	src := miniosource.NewSource(client, "tables", "cities.csv")
//
//	ix, err := csvgo.NewFromSource(ctx, src, decode)
//
// Positioned fetches use ranged GETs, so a fetch transfers only the tail it
// reads. Staleness checks use StatObject's LastModified.
package minio
