/*
Headless lightmap baker. It loads lume.toml, spawns the demo scene and
bakes a texture for every mesh node in it, then exits.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lume/engine"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/testbed"
)

func main() {
	configPath := "lume.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	config, err := engine.LoadApplicationConfig(configPath)
	if err != nil {
		panic(err)
	}

	game := testbed.NewBakeGame(config)

	e, err := engine.New(game.Game)
	if err != nil {
		panic(err)
	}
	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the loop gracefully on the first signal
	go func() {
		<-sigCh
		game.Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	if err := e.Run(); err != nil {
		panic(err)
	}
	game.Close()

	if err := e.Shutdown(); err != nil {
		panic(err)
	}
}
