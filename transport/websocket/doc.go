// Package websocket pushes analysis events to browsers watching a maze.
//
// A central Hub owns every connection. Clients subscribe to one maze with
// the ?maze= query parameter and receive JSON messages of the form
//
//	{"maze_id": "example", "event": "analysis_complete", "data": {...}, "sent_at": "..."}
//
// The API server broadcasts analysis_complete after each counting pass,
// crosscheck_complete after a cross-validation and maze_updated when a
// layout is saved. Incoming client frames are read only to keep the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("maze"))
//	})
package websocket
