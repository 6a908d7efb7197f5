// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command kar packs a directory, usually compiled shaders,
// into a kar archive and unpacks it again
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/carbon/utility/kar"
)

var (
	author   = flag.String("author", currentUserName(), "Set the author of the package when compressing")
	version  = flag.Int64("version", 1, "Archive version number to create it with")
	extract  = flag.String("e", "", "Extract the archive given")
	compress = flag.String("c", "", "Compress the given folder")
	list     = flag.String("l", "", "List the files of the archive given")
	dstFile  = flag.String("f", "shaders.kar", "Destination file when compressing")
	dstDir   = flag.String("d", ".", "Destination folder when extracting")
	silent   = flag.Bool("s", false, "Silent")
)

func currentUserName() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return u.Username
}

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	var err error
	switch {
	case *extract != "" && *compress != "":
		err = errors.New("only one operation at a time")
	case *compress != "":
		err = compressFiles(*compress, *dstFile)
	case *extract != "":
		err = extractFiles(*extract, *dstDir)
	case *list != "":
		err = listFiles(*list)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		log.WithError(err).Fatal("kar failed")
	}
}

func compressFiles(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return errors.Newf("destination file %s exists, will not overwrite", dst)
	}

	karBuilder := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})

	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		name, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		log.WithField("file", name).Info("adding")
		return karBuilder.Add(filepath.ToSlash(name), f)
	})
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	written, err := karBuilder.WriteTo(out)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"archive": dst, "bytes": written}).Info("archive written")
	return nil
}

func extractFiles(src, dst string) error {
	ar, err := kar.OpenFile(src)
	if err != nil {
		return err
	}
	defer ar.Close()

	for _, entry := range ar.Header().Index {
		data, err := ar.ReadAll(entry.Name)
		if err != nil {
			return err
		}
		name := filepath.Clean(filepath.FromSlash(entry.Name))
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return errors.Newf("refusing to extract %s outside of %s", entry.Name, dst)
		}
		path := filepath.Join(dst, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		log.WithField("file", path).Info("extracted")
	}
	return nil
}

func listFiles(src string) error {
	ar, err := kar.OpenFile(src)
	if err != nil {
		return err
	}
	defer ar.Close()

	header := ar.Header()
	fmt.Printf("author %s, version %d, created %s\n", header.Author, header.Version, time.Unix(header.DateCreated, 0).Format(time.RFC3339))
	for _, entry := range header.Index {
		fmt.Printf("%10d %10d %s\n", entry.Size, entry.CompressedSize, entry.Name)
	}
	return nil
}
