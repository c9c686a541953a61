// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/remotehack/livemap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
