package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"garaadka-laundry/cmd/bootstrap"
	"garaadka-laundry/internal/config"
	"garaadka-laundry/internal/pkg/system"
)

var pidFile = system.PIDFile{Path: "run/server.pid"}

func startServer(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	app, err := bootstrap.New(cfg, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	defer app.Close()

	if err := pidFile.Write(os.Getpid()); err != nil {
		return err
	}
	defer pidFile.Remove()

	return app.Start(ctx)
}

func stopServer() error {
	pid, err := pidFile.Stop()
	if err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	fmt.Printf("Sent stop signal to process %d.\n", pid)
	return nil
}
