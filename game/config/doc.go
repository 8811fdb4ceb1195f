// Package config loads and caches Same Game board configurations.
//
// Configurations are JSON files in a configs directory, one per file. The
// file name without its extension is the config ID used by sessions, the
// REST API and the MCP tools. Each configuration defines:
//   - Board width and height in columns and rows
//   - A palette, either by built-in name (palette_name) or as an explicit
//     list of colours (palette)
//   - Optional message templates shown as the game progresses
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	small, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is classic.json when it exists, else the first valid file in
// the directory, else the built-in 20x16 classic board.
package config
