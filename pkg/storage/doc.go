// Package storage uploads, retrieves, and links files on S3-compatible
// object stores, with magic-byte MIME detection, upload validation, and
// tenant-scoped keys.
//
// # Uploading
//
//	store, err := storage.New(storage.Config{
//	    Bucket:    "my-bucket",
//	    Region:    "us-east-1",
//	    AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//	    SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	info, err := storage.PutFile(ctx, store, fh,
//	    storage.WithPrefix("avatars"),
//	    storage.WithACL(storage.ACLPublicRead),
//	)
//
// PutBytes and PutFromURL cover in-memory payloads and remote fetches.
// Keys are generated as {tenant}/{prefix}/{ulid}.{ext} from the options
// and the detected type; WithKey overrides the whole key.
//
// # Validation
//
// Rules passed through WithValidation run before the upload and report
// failures as *FileValidationError with a machine-readable code:
//
//	info, err := storage.PutFile(ctx, store, fh,
//	    storage.WithValidation(
//	        storage.MaxSize(5 << 20),
//	        storage.ImageOnly(),
//	    ),
//	    storage.WithTenant(tenantID),
//	)
//	var verr *storage.FileValidationError
//	if errors.As(err, &verr) {
//	    // verr.Code, verr.Details
//	}
//
// # URLs
//
// URL picks signed or public form from the object's ACL; options can
// force either, adjust expiry, or set a download filename:
//
//	url, err := store.URL(ctx, info.Key)
//	url, err = store.URL(ctx, info.Key, storage.WithSigned(time.Hour))
//	url, err = store.URL(ctx, info.Key, storage.WithDownload("document.pdf"))
//
// MinIO and other S3 work-alikes are supported through Config.Endpoint
// and Config.PathStyle.
package storage
