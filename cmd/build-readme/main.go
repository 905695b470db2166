package main

import (
	"flag"
	"os"

	"github.com/keshon/classcmd/internal/commands"
	"github.com/keshon/classcmd/internal/config"
	"github.com/keshon/classcmd/internal/docs"
	"github.com/keshon/classcmd/pkg/appcmd"
	"github.com/keshon/classcmd/pkg/classcmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	tmplPath := flag.String("template", "README.md.tmpl", "README template")
	outPath := flag.String("out", "README.md", "output file")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	tree := classcmd.NewTree(appcmd.WithLogger(log.Logger))
	categories, err := commands.Register(tree)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to declare commands")
	}

	if err := docs.UpdateReadme(tree.Tree, categories, config.CategoryWeights, *tmplPath, *outPath); err != nil {
		log.Fatal().Err(err).Msg("failed to update README")
	}
}
