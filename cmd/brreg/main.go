package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	cli "github.com/jawher/mow.cli"

	"github.com/vvangelov/brregservice/internal"
	"github.com/vvangelov/brregservice/internal/app"
	"github.com/vvangelov/brregservice/internal/config"
	"github.com/vvangelov/brregservice/internal/handler"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/lookup"
	"github.com/vvangelov/brregservice/internal/storage"
)

func main() {
	brreg := cli.App("brreg", "Look up and cache organizations from the Brønnøysund Register Centre")
	brreg.Spec = "[--log-level]"
	level := brreg.StringOpt("log-level", "warn", "log level (debug, info, warn, error)")

	brreg.Before = func() {
		if _, err := logging.New(*level); err != nil {
			fmt.Fprintln(os.Stderr, err)
			cli.Exit(2)
		}
	}

	brreg.Command("lookup", "query the registry for an organization number and cache the result", func(cmd *cli.Cmd) {
		number := cmd.StringArg("NUMBER", "", "9 digit organization number")
		cmd.Action = func() {
			exit(runLookup(os.Stdout, *number))
		}
	})
	brreg.Command("show", "print the cached record for an organization number", func(cmd *cli.Cmd) {
		number := cmd.StringArg("NUMBER", "", "9 digit organization number")
		cmd.Action = func() {
			exit(runShow(os.Stdout, *number))
		}
	})
	brreg.Command("migrate", "apply the database schema", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			exit(runMigrate())
		}
	})

	if err := brreg.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func exit(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.Exit(1)
	}
}

func checkNumber(number string) error {
	if len(number) != internal.OrganizationNumberLength {
		return fmt.Errorf("organization number must have %d characters, got %q", internal.OrganizationNumberLength, number)
	}
	return nil
}

func runLookup(w io.Writer, number string) error {
	if err := checkNumber(number); err != nil {
		return err
	}
	conf, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := app.New(ctx, conf)
	if err != nil {
		return err
	}
	defer a.Close()

	org, err := a.Lookup.Lookup(ctx, number)
	if encErr := writeJSON(w, lookupEnvelope(org, err)); encErr != nil {
		return encErr
	}
	if errors.Is(err, lookup.ErrNotFound) {
		return nil
	}
	return err
}

// lookupEnvelope builds the same body the HTTP lookup answers with.
func lookupEnvelope(org *storage.Organization, err error) *handler.LookupResponse {
	res := &handler.LookupResponse{Data: org}
	if err == nil {
		return res
	}
	status, msg := handler.DefaultMessages().LookupStatus(err)
	if status != http.StatusInternalServerError {
		res.Data = nil
	}
	res.Errors = &msg
	return res
}

func runShow(w io.Writer, number string) error {
	if err := checkNumber(number); err != nil {
		return err
	}
	conf, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	stg, err := app.NewStore(ctx, conf)
	if err != nil {
		return err
	}
	defer stg.Close()

	data, err := stg.Organization(ctx, number)
	if err != nil {
		return err
	}
	return writeJSON(w, data.Organization())
}

func runMigrate() error {
	conf, err := config.Load()
	if err != nil {
		return err
	}
	stg, err := app.NewStore(context.Background(), conf)
	if err != nil {
		return err
	}
	defer stg.Close()
	return stg.Migrate()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
