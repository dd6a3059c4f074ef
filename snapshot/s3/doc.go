// Package s3 provides an S3 implementation of the snapshot.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "tables/cities.snap")
//
//	ix, err := csvgo.FromSnapshotStore(ctx, src, store, decode)
//
// The snapshot is one object. Save streams the container through a parallel
// multipart uploader; staleness checks read the object's LastModified
// timestamp via HeadObject.
package s3
