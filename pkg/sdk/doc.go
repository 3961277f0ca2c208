// Package driftd provides an embedded Go client for the driftd temporal
// term-versioning and semantic-drift-provenance engine, backed by SQLite.
//
// The client wires the full engine in-process, so no server is needed:
//
//	client, _ := driftd.New(driftd.WithSQLite("research.db"))
//	defer client.Close()
//
//	term, _ := client.Terms().Create(ctx, driftd.TermInput{
//	    Text: "hooligan", ResearchDomain: "sociolinguistics", CreatedBy: 1,
//	})
//	v1, _ := client.Versions().CreateRoot(ctx, driftd.RootVersionInput{
//	    TermID: term.ID, Period: "2025", Meaning: "a violent troublemaker",
//	    Fuzziness: 0.5, CreatedBy: 1,
//	})
//	_, _ = client.Anchors().Attach(ctx, v1.ID, "young", driftd.Float(0.9), driftd.Int(1))
//
// Drift detection runs through activities: Start records what an agent is
// analyzing, Complete binds the generated version, its magnitude and the
// provenance edge back to the used version.
package driftd
