// Package api is the client for the MistGo REST API.
//
// Every call goes through Client.Request, which attaches the session's bearer
// token, interprets the response and tears the session down when the server
// answers 401 Unauthorized:
//
//	sess := session.NewInMemory()
//	client, err := api.New(api.DefaultBaseURL, sess, api.WithNavigator(location))
//	if _, err := client.Login(ctx, "alice", password); err != nil {
//		// *api.HTTPError carries the server's message
//	}
//	items, err := client.ListItems(ctx)
//
// The endpoint wrappers (Login, Register, ListItems, ...) are fixed calls into
// Request with a literal path, method and body shape.
package api
