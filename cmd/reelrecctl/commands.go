// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelrec/internal/validation"
)

const defaultAPIURL = "http://localhost:5000"

// cliOptions are the persistent flags shared by every command.
type cliOptions struct {
	apiURL  string
	output  string
	timeout time.Duration
	out     io.Writer
}

func (o *cliOptions) client() *apiClient {
	return newAPIClient(o.apiURL, o.timeout)
}

// render prints data as indented JSON or through the text formatter.
func (o *cliOptions) render(data json.RawMessage, text func(w io.Writer, data json.RawMessage) error) error {
	if o.output == "json" || text == nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := o.out.Write(buf.Bytes())
		return err
	}
	return text(o.out, data)
}

type userArg struct {
	UserID string `validate:"required,userid"`
}

type movieArg struct {
	MovieID string `validate:"required,movieid"`
}

type browseArgs struct {
	Category string `validate:"required,oneof=popular top_rated now_playing upcoming trending"`
	Page     int    `validate:"min=1,max=500"`
}

func validateArg(v any) error {
	if err := validation.ValidateStruct(v); err != nil {
		return err
	}
	return nil
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{out: out}

	root := &cobra.Command{
		Use:   "reelrecctl",
		Short: "Reelrec CLI - train the model and query recommendations",
		Long: `reelrecctl talks to a running Reelrec server over its HTTP API.
The server URL defaults to REELREC_API or ` + defaultAPIURL + `.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("api") {
				if env := os.Getenv("REELREC_API"); env != "" {
					opts.apiURL = env
				}
			}
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unknown output format %q: use text or json", opts.output)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", defaultAPIURL, "API server URL (defaults to REELREC_API env var)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Minute, "Request timeout")

	root.AddCommand(
		newInitializeCmd(opts),
		newTrainCmd(opts),
		newStatusCmd(opts),
		newRecommendCmd(opts),
		newMovieCmd(opts),
		newSimilarCmd(opts),
		newBrowseCmd(opts),
		newHistoryCmd(opts),
	)
	root.SetOut(out)
	return root
}

func newInitializeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Fetch the movie catalog and rebuild feature vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/recommends/initialize", nil, nil)
			if err != nil {
				return err
			}
			return opts.render(data, func(w io.Writer, data json.RawMessage) error {
				var resp struct {
					Message string `json:"message"`
					Count   int    `json:"count"`
				}
				if err := json.Unmarshal(data, &resp); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "%s: %d movies\n", resp.Message, resp.Count)
				return err
			})
		},
	}
}

func newTrainCmd(opts *cliOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model unless it is still fresh",
		Long: `Train the autoencoder on the current catalog.

Examples:
  reelrecctl train
  reelrecctl train --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if force {
				query.Set("force", "true")
			}
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/recommends/train", query, nil)
			if err != nil {
				return err
			}
			return opts.render(data, func(w io.Writer, data json.RawMessage) error {
				var resp struct {
					Message string `json:"message"`
					Result  struct {
						Status        string   `json:"status"`
						LastTrainedAt string   `json:"lastTrainedAt"`
						FinalLoss     *float64 `json:"finalLoss"`
						Epochs        int      `json:"epochs"`
						Samples       int      `json:"samples"`
					} `json:"result"`
				}
				if err := json.Unmarshal(data, &resp); err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\n", resp.Message)
				fmt.Fprintf(w, "  status:       %s\n", resp.Result.Status)
				fmt.Fprintf(w, "  last trained: %s\n", resp.Result.LastTrainedAt)
				if resp.Result.FinalLoss != nil {
					fmt.Fprintf(w, "  epochs:       %d over %d samples\n", resp.Result.Epochs, resp.Result.Samples)
					fmt.Fprintf(w, "  final loss:   %.6f\n", *resp.Result.FinalLoss)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Retrain even if the model is fresh")
	return cmd
}

func newStatusCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show model training state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/recommends/status", nil, nil)
			if err != nil {
				return err
			}
			return opts.render(data, func(w io.Writer, data json.RawMessage) error {
				var info struct {
					Trained          bool    `json:"trained"`
					LastTrainingTime *string `json:"lastTrainingTime"`
					MovieCacheSize   int     `json:"movieCacheSize"`
					Training         bool    `json:"training"`
				}
				if err := json.Unmarshal(data, &info); err != nil {
					return err
				}
				last := "never"
				if info.LastTrainingTime != nil {
					last = *info.LastTrainingTime
				}
				fmt.Fprintf(w, "trained:       %t\n", info.Trained)
				fmt.Fprintf(w, "last training: %s\n", last)
				fmt.Fprintf(w, "cached movies: %d\n", info.MovieCacheSize)
				fmt.Fprintf(w, "training now:  %t\n", info.Training)
				return nil
			})
		},
	}
}

func newRecommendCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <userID>",
		Short: "List recommendations for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateArg(&userArg{UserID: args[0]}); err != nil {
				return err
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/recommends/recommend/"+url.PathEscape(args[0]), nil, nil)
			if err != nil {
				return err
			}
			return opts.render(data, func(w io.Writer, data json.RawMessage) error {
				var resp struct {
					Recommendations []struct {
						ID              int64  `json:"id"`
						Title           string `json:"title"`
						SimilarityScore string `json:"similarity_score"`
					} `json:"recommendations"`
					Count int `json:"count"`
				}
				if err := json.Unmarshal(data, &resp); err != nil {
					return err
				}
				if resp.Count == 0 {
					_, err := fmt.Fprintln(w, "No recommendations")
					return err
				}
				for i, r := range resp.Recommendations {
					score := r.SimilarityScore
					if score == "" {
						score = "-"
					}
					fmt.Fprintf(w, "%2d. %-8s %-10d %s\n", i+1, score, r.ID, r.Title)
				}
				return nil
			})
		},
	}
}

func newMovieCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <movieID>",
		Short: "Show catalog details for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateArg(&movieArg{MovieID: args[0]}); err != nil {
				return err
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/movies/"+args[0], nil, nil)
			if err != nil {
				return err
			}
			return opts.render(data, nil)
		},
	}
}

func newSimilarCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "similar <movieID>",
		Short: "List catalog movies with similar features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateArg(&movieArg{MovieID: args[0]}); err != nil {
				return err
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/movies/"+args[0]+"/similar", nil, nil)
			if err != nil {
				return err
			}
			return opts.render(data, func(w io.Writer, data json.RawMessage) error {
				var resp struct {
					MovieID int64 `json:"movieId"`
					Similar []struct {
						ID              int64  `json:"id"`
						Title           string `json:"title"`
						SimilarityScore string `json:"similarity_score"`
					} `json:"similar"`
				}
				if err := json.Unmarshal(data, &resp); err != nil {
					return err
				}
				fmt.Fprintf(w, "%d similar movies to %d\n", len(resp.Similar), resp.MovieID)
				for i, m := range resp.Similar {
					fmt.Fprintf(w, "%2d. %-8s %-10d %s\n", i+1, m.SimilarityScore, m.ID, m.Title)
				}
				return nil
			})
		},
	}
}

func newBrowseCmd(opts *cliOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "browse <category>",
		Short: "List a remote catalog category (popular, top_rated, now_playing, upcoming, trending)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateArg(&browseArgs{Category: args[0], Page: page}); err != nil {
				return err
			}
			query := url.Values{}
			query.Set("page", strconv.Itoa(page))
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/movies/category/"+args[0], query, nil)
			if err != nil {
				return err
			}
			return opts.render(data, func(w io.Writer, data json.RawMessage) error {
				var resp struct {
					Category string `json:"category"`
					Page     int    `json:"page"`
					Results  []struct {
						ID    int64  `json:"id"`
						Title string `json:"title"`
					} `json:"results"`
				}
				if err := json.Unmarshal(data, &resp); err != nil {
					return err
				}
				fmt.Fprintf(w, "%s, page %d\n", resp.Category, resp.Page)
				for _, m := range resp.Results {
					fmt.Fprintf(w, "  %-10d %s\n", m.ID, m.Title)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Listing page (1-500)")
	return cmd
}

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or extend a user's watch history",
	}

	printHistory := func(w io.Writer, data json.RawMessage) error {
		var resp struct {
			UserID         string   `json:"userId"`
			WatchedHistory []string `json:"watchedHistory"`
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s has watched %d movies\n", resp.UserID, len(resp.WatchedHistory))
		for _, id := range resp.WatchedHistory {
			fmt.Fprintf(w, "  %s\n", id)
		}
		return nil
	}

	show := &cobra.Command{
		Use:   "show <userID>",
		Short: "Print a user's watch history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateArg(&userArg{UserID: args[0]}); err != nil {
				return err
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/users/"+url.PathEscape(args[0])+"/watch-history", nil, nil)
			if err != nil {
				return err
			}
			return opts.render(data, printHistory)
		},
	}

	add := &cobra.Command{
		Use:   "add <userID> <movieID>",
		Short: "Record that a user watched a movie",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateArg(&userArg{UserID: args[0]}); err != nil {
				return err
			}
			if err := validateArg(&movieArg{MovieID: args[1]}); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("movieID: %w", err)
			}
			body := map[string]int64{"movieId": id}
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/users/"+url.PathEscape(args[0])+"/watch-history", nil, body)
			if err != nil {
				return err
			}
			return opts.render(data, printHistory)
		},
	}

	cmd.AddCommand(show, add)
	return cmd
}
