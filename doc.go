// Package zipkit is a ZIP archive container engine: it creates,
// populates, reads, and extracts ZIP-format archives, operating
// uniformly over two backing stores (an on-disk file or an in-memory
// byte buffer) with bulk ingestion of whole directory trees.
//
// The writer [Zip] and reader [Unzip] are thin facades over one shared
// internal representation, so an archive finalized in memory can be
// reopened for reading without a round trip through storage.
//
// # Writing
//
//	z, err := zipkit.Create("out.zip")
//	if err != nil {
//	    return err
//	}
//	defer z.Close()
//
//	// Add entries from memory
//	err = z.Add("docs/readme.txt", []byte("hello"))
//
//	// Add a whole directory tree, empty subdirectories included
//	err = z.AddAllFrom("./assets")
//
//	// Seal the archive. Finalize is never implicit: a Zip closed
//	// without it leaves an unreadable partial file.
//	err = z.Finalize()
//
// # Reading
//
//	uz, err := zipkit.Open("out.zip")
//	if err != nil {
//	    return err
//	}
//	defer uz.Close()
//
//	for _, name := range uz.Entries() {
//	    data, err := uz.Extract(name)
//	    ...
//	}
//
//	// Or extract everything at once
//	err = uz.ExtractAllTo("./extracted")
//
// Extraction validates every entry name against directory traversal:
// a hostile archive containing "../escape.txt" aborts ExtractAllTo
// with [ErrPathTraversal] before anything is written.
//
// # In-memory archives
//
//	z := zipkit.CreateInMemory()
//	z.Add("a.txt", data)
//	z.Finalize()
//	raw, _ := z.Data()
//	uz, err := zipkit.OpenBytes(raw)
//
// # Compression
//
// Entries are deflated by default; pass WithMethod(Store) to store
// data byte-identically. Defaults are configurable through the
// environment (BEAVER_ZIPKIT_METHOD, BEAVER_ZIPKIT_LEVEL). Every entry
// records a CRC-32 of its uncompressed bytes, verified on extraction.
//
// Zip and Unzip are not internally synchronized; concurrent use of one
// instance must be serialized by the caller. ZIP64, multi-volume
// archives, and encryption are not supported.
package zipkit
