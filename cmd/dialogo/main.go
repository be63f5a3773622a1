/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package main

import (
	"fmt"
	"os"

	"github.com/dialogo-im/dialogo/app"
)

func main() {
	if err := app.New(os.Stdout, os.Args).Run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "dialogo: %v\n", err)
		os.Exit(1)
	}
}
