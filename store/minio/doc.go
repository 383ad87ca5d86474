// Package minio provides a Store implementation backed by MinIO or any
// S3-compatible object storage.
//
// # Usage
//
//	client, _ := minio.New("play.min.io", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	st := miniostore.NewStore(client, "models", "kmeans/")
//	err := model.SaveToStore(ctx, st, "customers-v3.snap")
package minio
