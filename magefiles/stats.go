// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// sourceGlob matches the Go sources that ship in the binary and its tests.
const sourceGlob = "{cmd,internal,pkg}/**/*.go"

// lineCount splits a package's lines into production and test code.
type lineCount struct {
	Prod int `json:"prod"`
	Test int `json:"test"`
}

// statsRecord is the JSON line printed by Stats.
type statsRecord struct {
	GoLOCProd int                  `json:"go_loc_prod"`
	GoLOCTest int                  `json:"go_loc_test"`
	GoLOC     int                  `json:"go_loc"`
	Packages  map[string]lineCount `json:"packages"`
	DocWords  map[string]int       `json:"doc_words"`
}

// Stats prints Go lines of code per package and word counts of the
// project documents as one JSON record.
func Stats() error {
	fsys := os.DirFS(".")
	files, err := doublestar.Glob(fsys, sourceGlob)
	if err != nil {
		return fmt.Errorf("globbing sources: %w", err)
	}
	sort.Strings(files)

	rec := statsRecord{
		Packages: map[string]lineCount{},
		DocWords: map[string]int{},
	}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return err
		}
		n := bytes.Count(data, []byte("\n"))
		pkg := rec.Packages[path.Dir(file)]
		if strings.HasSuffix(file, "_test.go") {
			pkg.Test += n
			rec.GoLOCTest += n
		} else {
			pkg.Prod += n
			rec.GoLOCProd += n
		}
		rec.Packages[path.Dir(file)] = pkg
	}
	rec.GoLOC = rec.GoLOCProd + rec.GoLOCTest

	docs, err := doublestar.Glob(fsys, "{*.md,docs/**/*.md}")
	if err != nil {
		return fmt.Errorf("globbing docs: %w", err)
	}
	for _, doc := range docs {
		data, err := fs.ReadFile(fsys, doc)
		if err != nil {
			return err
		}
		rec.DocWords[doc] = len(strings.Fields(string(data)))
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}
