// Package cardex embeds the card catalogue in a Go program without the
// HTTP layer. It talks to the same MongoDB, PostgreSQL or in-memory
// stores the server uses and applies the same filter and search rules.
//
//	client, _ := cardex.New(ctx, cardex.WithMongo("mongodb://localhost:27017", "cardex"))
//	defer client.Close()
//
//	page, _ := client.Search().
//	    Term("dark magician").
//	    Where("attribute", "DARK").
//	    Page(2).
//	    Limit(20).
//	    Do(ctx)
//
//	card, _ := client.Cards().Get(ctx, 46986414)
package cardex
