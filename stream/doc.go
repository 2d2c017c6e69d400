// Package stream reads and writes NBT containers: one or more roots in a
// bare or compressed byte stream, as stored in .dat files and region
// chunks.
//
// Supported compressions are gzip, zlib, zstd and LZ4 frames. Readers
// detect the compression from the magic bytes unless told otherwise:
//
//	r, err := stream.NewReader(f)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	root, err := r.Next()
//
// Writers must be closed to finish the compressed stream. Fingerprint gives
// a BLAKE3 digest of a root that ignores compound key order.
package stream
