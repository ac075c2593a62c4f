// Package consolelog derives Team Fortress 2 game state from console.log.
//
// The game writes console.log when launched with -condebug. This package
// reads its tail and folds the lines into a State: whether the player is in
// menus or on a map, the class they play, the server they're on and whether
// they're queued for a match.
//
// # Basic Usage
//
// To scan once:
//
//	in, err := consolelog.New(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var cur consolelog.Cursor
//	res := in.Scan(&cur, consolelog.Request{Usernames: []string{"Steve"}})
//	fmt.Println(res.State)
//
// Keep the Cursor between scans: an unchanged file isn't reread, and
// cleanup only runs on the second scan in a row that ends in menus.
//
// To follow state changes:
//
//	states, errs, err := consolelog.Watch(ctx, path, nil,
//	    consolelog.WithUsernames("Steve"),
//	    consolelog.WithFollow(true),
//	)
//
// # Maintenance
//
// console.log is never rotated by the game. When trimming is enabled in
// Settings, a scan cuts an oversized file down and periodically removes
// blank lines and error spam from it.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with Valve Corporation.
package consolelog
