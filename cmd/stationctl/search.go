package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"text/tabwriter"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"

	"github.com/bbernstein/chargeway/backend-go/internal/api"
	"github.com/bbernstein/chargeway/backend-go/internal/app"
	"github.com/bbernstein/chargeway/backend-go/internal/handler"
)

type searchOptions struct {
	lat, lon    float64
	radius      float64
	limit       int
	source      string
	query       string
	connector   string
	available   bool
	fast        bool
	open24h     bool
	freeParking bool
	recommend   bool
	json        bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find charging stations near a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.lat, "lat", 0, "latitude in decimal degrees")
	f.Float64Var(&opts.lon, "lon", 0, "longitude in decimal degrees")
	f.Float64Var(&opts.radius, "radius", 0, "search radius in miles (default from config)")
	f.IntVar(&opts.limit, "limit", 0, "maximum number of stations (default from config)")
	f.StringVar(&opts.source, "source", api.SourceLive, "live providers or the local store")
	f.StringVarP(&opts.query, "query", "q", "", "match name, address or network")
	f.StringVar(&opts.connector, "connector", "", "connector type, e.g. CCS")
	f.BoolVar(&opts.available, "available", false, "only stations with a free port")
	f.BoolVar(&opts.fast, "fast", false, "only fast charging stations")
	f.BoolVar(&opts.open24h, "open24h", false, "only stations open around the clock")
	f.BoolVar(&opts.freeParking, "free-parking", false, "only stations with free parking")
	f.BoolVar(&opts.recommend, "recommend", false, "include a recommendation for the current vehicle")
	f.BoolVar(&opts.json, "json", false, "print the raw JSON response")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

// params mirrors the query string accepted by the stations Lambda.
func (o *searchOptions) params() map[string]string {
	p := map[string]string{
		"lat":    strconv.FormatFloat(o.lat, 'f', -1, 64),
		"lon":    strconv.FormatFloat(o.lon, 'f', -1, 64),
		"source": o.source,
	}
	if o.radius > 0 {
		p["radius"] = strconv.FormatFloat(o.radius, 'f', -1, 64)
	}
	if o.limit > 0 {
		p["limit"] = strconv.Itoa(o.limit)
	}
	if o.query != "" {
		p["q"] = o.query
	}
	if o.connector != "" {
		p["connector"] = o.connector
	}
	flags := map[string]bool{
		"available":   o.available,
		"fast":        o.fast,
		"open24h":     o.open24h,
		"freeParking": o.freeParking,
		"recommend":   o.recommend,
	}
	for k, v := range flags {
		if v {
			p[k] = "true"
		}
	}
	return p
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	h := handler.NewStationsHandler(a.Aggregator, a.Store, cfg.DefaultRadiusMiles, cfg.ResultLimit)
	resp, err := h.HandleRequest(cmd.Context(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: opts.params(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resp.StatusCode != http.StatusOK {
		var body api.ErrorResponse
		if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
			return fmt.Errorf("search failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("search failed: %s", body.Error)
	}
	if opts.json {
		_, err := fmt.Fprintln(out, resp.Body)
		return err
	}

	var body api.StationsResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return fmt.Errorf("decoding search response: %w", err)
	}
	return printStations(out, body)
}

func printStations(out io.Writer, body api.StationsResponse) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tDIST (mi)\tPORTS\tKW\tPRICE\tSTATUS\n")
	for _, s := range body.Stations {
		dist := "-"
		if s.Distance != nil {
			dist = strconv.FormatFloat(*s.Distance, 'f', 2, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%g\t%s\t%s\n",
			s.ID, s.Name, dist, s.AvailablePorts, s.TotalPorts, s.PowerKw, s.PricePerKwh, s.Status)
	}
	fmt.Fprintf(w, "\n%d station(s) via %s\n", len(body.Stations), body.Step)

	if rec := body.Recommendation; rec != nil {
		fmt.Fprintf(w, "Battery %d%% (%s), %d station(s) in range\n", rec.BatteryLevel, rec.Level, len(rec.Reachable))
		if rec.NearestAvailable != nil {
			fmt.Fprintf(w, "Nearest with a free port: %s\n", rec.NearestAvailable.Name)
		}
	}
	return w.Flush()
}
