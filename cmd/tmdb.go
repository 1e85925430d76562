package main

import (
	"context"
	"fmt"

	"github.com/nvale/scrapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// TMDBSearch searches the server's metadata proxy for series candidates.
func (r *Runner) TMDBSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	resp, err := r.metadata.Search(ctx, query, cmd.Bool("fuzzy"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, true)
	}

	if resp.EffectiveQuery != "" && resp.EffectiveQuery != query {
		r.writePlain("No results for %q; the server searched for %q instead\n\n", query, resp.EffectiveQuery)
	}

	if len(resp.Results) == 0 {
		return r.writePlain("No results\n")
	}

	for _, c := range resp.Results {
		line := fmt.Sprintf("%8d  %s", c.ID, c.Name)
		if c.FirstAirDate != "" {
			line = fmt.Sprintf("%s (%s)", line, c.FirstAirDate)
		}
		if c.MediaType != "" {
			line = fmt.Sprintf("%s [%s]", line, c.MediaType)
		}
		r.writePlain("%s\n", line)
	}
	r.writePlain("\n%d result(s)\n", resp.TotalResults)
	return nil
}

// TMDBSeries fetches and prints series detail with seasons and episodes.
func (r *Runner) TMDBSeries(ctx context.Context, cmd *cli.Command) error {
	id := int(cmd.IntArg("id"))
	if id == 0 {
		return fmt.Errorf("%w: series id", shared.ErrMissingArgument)
	}

	series, err := r.metadata.SeriesDetail(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(series, true)
	}

	r.writePlain("%s", series.Name)
	if series.FirstAirDate != "" {
		r.writePlain(" (%s)", series.FirstAirDate)
	}
	r.writePlain("\n")
	if series.Overview != "" {
		r.writePlainln("%s", series.Overview)
	}

	for _, season := range series.Seasons {
		r.writePlain("\n%s\n", season.Name)
		for _, episode := range season.Episodes {
			r.writePlain("  S%02dE%02d  %s\n", season.SeasonNumber, episode.EpisodeNumber, episode.Name)
		}
	}
	return nil
}
