package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/google/uuid"

	"github.com/sooswastaken/Avalon/config"
	"github.com/sooswastaken/Avalon/connection"
	"github.com/sooswastaken/Avalon/credentials"
	"github.com/sooswastaken/Avalon/logger"
	"github.com/sooswastaken/Avalon/monitor"
	"github.com/sooswastaken/Avalon/session"
	"github.com/sooswastaken/Avalon/store"
	"github.com/sooswastaken/Avalon/timer"
)

func run(cfg *config.Config, f *flags) error {
	creds, err := credentials.NewFileStore(cfg.Client.CredentialPath)
	if err != nil {
		return err
	}
	cache, err := creds.Load()
	if err != nil {
		return err
	}
	if f.credential != "" {
		cache.Credential = f.credential
	}
	if f.roomID != "" {
		cache.RoomID = f.roomID
	}
	if cache.Credential == "" {
		return errors.New("no cached credential, pass --credential")
	}
	if cache.RoomID == "" {
		return errors.New("no room id, pass --room")
	}
	if cache.UserID == "" {
		// First run for this credential; the id identifies this client
		// until the server tells us otherwise.
		cache.UserID = uuid.NewString()
	}
	if err := creds.Save(cache); err != nil {
		logger.Log.Warnf("Saving session cache: %v", err)
	}

	mon := monitor.NewMonitor("avalon_client")
	if cfg.Monitor.Enabled {
		mon.StartServer(cfg.Monitor.Address)
	}

	sched := timer.NewScheduler()
	defer sched.Stop()

	manager := connection.NewManager(cfg.Server.URL, cfg.Client.ReconnectDelay, sched, mon)
	st := store.New()
	excl := session.NewExclusivity(cache.UserID, manager, creds, sched, cfg.Client.KickRedirectDelay)
	rt := session.NewRuntime(cache.UserID, st, manager, excl)

	done := make(chan struct{})
	var doneOnce sync.Once
	finish := func() { doneOnce.Do(func() { close(done) }) }

	rt.OnNotice(func(text string) {
		fmt.Printf("\n*** %s\n", text)
	})
	rt.OnUpdate(func() {
		render(os.Stdout, rt.View(), cache.UserID)
	})
	excl.OnRedirect(func() {
		fmt.Println("Leaving the room.")
		finish()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rt.Run(ctx)

	logger.Log.Infof("Joining room %s at %s", cache.RoomID, cfg.Server.URL)
	manager.Connect(cache.RoomID, cache.Credential)

	go readCommands(rt, done, finish)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-interrupt:
		logger.Log.Info("Interrupt received, closing connection")
		manager.Stop()
	case <-done:
		manager.Stop()
	}
	return nil
}
