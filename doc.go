/*
Package datadesk is a conversational assistant for the gas station registry dataset.

A user uploads the registry as a CSV or JSON file, navigates inline menus to sort or
filter it, and receives the result back as a file. The same controller serves a
Telegram bot, an HTTP API and an interactive console.

# Concept

Transports translate what the user did into a domain.Event and hand it to Dispatch.
The controller loads the user's session under a per-user lock, applies the event to a
private copy, and returns the domain.Command values the transport must execute: render a
menu, send a text, send a file. The session is written back only when the event was
handled, so a failure never leaves a user half-way between two menus.

# Key Features

  - Per-user isolation: events for one user are serialized, different users proceed in parallel.
  - Menu history: every session carries a navigation stack, so Back always restores the previous menu.
  - Typed queries: sorting and filtering go through a schema of typed fields, so "2021-13-01" is
    rejected as a date instead of being compared as text.
  - Pluggable storage: sessions live in memory by default or in Redis for several replicas.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/datadesk"
		"github.com/aretw0/datadesk/pkg/domain"
	)

	func main() {
		desk := datadesk.New()
		ctx := context.Background()

		data, err := os.ReadFile("registry.csv")
		if err != nil {
			log.Fatal(err)
		}

		// Upload, then open the sort menu.
		for _, ev := range []domain.Event{
			domain.DatasetUploaded("user-1", data, "registry.csv"),
			domain.ActionSelected("user-1", "Sorting"),
		} {
			cmds, err := desk.Dispatch(ctx, ev)
			if err != nil {
				log.Fatal(err)
			}
			for _, cmd := range cmds {
				log.Printf("%s: %+v", cmd.Type, cmd.Payload)
			}
		}
	}
*/
package datadesk
