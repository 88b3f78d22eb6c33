package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"recordsrv/internal/client"
	"recordsrv/internal/shared"
)

const usage = `usage: records-cli [-server URL] <command> [args]

commands:
  list               print all records
  get ID             print one record
  create NAME        insert a record
  update ID NAME     rename a record
  delete ID          remove a record
  openapi            print the server's openapi.yaml
`

func main() {
	serverURL := flag.String("server", "", "server base URL (default $RS_SERVER_URL or http://127.0.0.1:3999)")
	timeout := flag.Duration("timeout", 20*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	c := client.New(shared.ServerURL(*serverURL))
	c.HTTP.Timeout = *timeout
	ctx := context.Background()

	if err := run(ctx, c, args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "list":
		recs, err := c.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%s\t%s\n", r.ID, r.Name)
		}
		return nil
	case "get":
		id, err := needID(args, 1)
		if err != nil {
			return err
		}
		r, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", r.ID, r.Name)
		return nil
	case "create":
		if len(args) != 1 {
			return errors.New("create: expected NAME")
		}
		return printMsg(c.Create(ctx, args[0]))
	case "update":
		id, err := needID(args, 2)
		if err != nil {
			return err
		}
		return printMsg(c.Update(ctx, id, args[1]))
	case "delete":
		id, err := needID(args, 1)
		if err != nil {
			return err
		}
		return printMsg(c.Delete(ctx, id))
	case "openapi":
		b, err := c.OpenAPI(ctx)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func needID(args []string, want int) (int64, error) {
	if len(args) != want {
		return 0, fmt.Errorf("expected %d argument(s), got %d", want, len(args))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printMsg(msg string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
