// Package s3 provides an S3 implementation of the source.Source interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := awss3.NewFromConfig(cfg)
//	src := s3.NewSource(client, "my-bucket", "tables/cities.csv")
//
//	ix, err := csvgo.NewFromSource(ctx, src, decode)
//
// Sequential builds stream the whole object; positioned fetches issue HTTP
// range requests ("bytes=offset-"), so a fetch transfers only the tail it
// reads. Staleness checks use HeadObject LastModified.
package s3
