// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/usbai/internal/config"
)

// WatchConfig watches the config file and emits the configured model
// name whenever it changes on disk. The returned stop function closes
// the watcher and the channel.
//
// Editors replace files rather than writing in place, so the parent
// directory is watched and events are filtered by name.
func WatchConfig(path string) (<-chan string, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	ch := make(chan string, 1)
	done := make(chan struct{})

	go func() {
		defer close(ch)
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				cfg, err := config.LoadFromPath(path)
				if err != nil {
					log.Printf("chat: config reload failed: %v", err)
					continue
				}
				select {
				case ch <- cfg.General.Model:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("chat: config watch error: %v", err)
			}
		}
	}()

	stop := func() {
		close(done)
		watcher.Close()
	}
	return ch, stop, nil
}
