// Package snapshot exports rendered HTML to content-addressed storage.
//
// Every snapshot is stored under prefix/name-<hash>.html where hash is the
// xxhash of the markup, so identical renders deduplicate and a changed
// render always gets a new key. DiskStore writes to the local filesystem;
// S3Store uploads with PutObject.
package snapshot
