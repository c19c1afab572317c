// Package taxint provides a taxonomic-intersection read classifier that
// reconciles database-search hits against a phylogenetic reference tree.
//
// Quick start:
//
//	c, err := taxint.New("taxonomy.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	err = c.ClassifyStream(ctx, manifest, hits, func(r taxint.Result) error {
//	    fmt.Println(r.ReadID, r.ClassName)
//	    return nil
//	})
//
// A Classifier holds a shared read-only handle on the taxonomy index and is
// safe for concurrent use: each ClassifyStream call runs an independent
// single-pass aggregation. Create once, reuse across streams.
package taxint
