// Package storage is where transcripts are written: a small object-storage
// interface with a local filesystem backend and an S3 backend.
//
// Backends register themselves from their package init, so the binary
// imports the ones it supports:
//
//	import (
//	    _ "github.com/kbukum/audioscribe/storage/local"
//	    _ "github.com/kbukum/audioscribe/storage/s3"
//	)
//
//	output:
//	  provider: s3
//	  bucket: transcripts
//	  prefix: interviews/
package storage
