// Package demo generates a deterministic synthetic dataset so the service
// runs end to end without an upstream system. The rows are intentionally
// messy: numeric strings, missing fields and blank IDs appear the same way
// they do in real telemetry exports.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/vendhub/internal/clock"
	"github.com/smallbiznis/vendhub/internal/datasource/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const randSeed = 20240601

type product struct {
	id         string
	name       string
	priceCents int64
	costCents  int64
}

var catalog = []product{
	{"prod-cola", "Cola 12oz", 250, 90},
	{"prod-diet", "Diet Cola 12oz", 250, 90},
	{"prod-water", "Spring Water", 200, 40},
	{"prod-chips", "Potato Chips", 175, 60},
	{"prod-candy", "Chocolate Bar", 150, 55},
	{"prod-gum", "Mint Gum", 125, 30},
	{"prod-energy", "Energy Drink", 350, 140},
	{"prod-trail", "Trail Mix", 225, 95},
}

var prospectSources = []string{"Referral", "Cold Call", "Web Form", "Trade Show", "Walk In"}

type Provider struct {
	log   *zap.Logger
	clock clock.Clock
	node  *snowflake.Node
}

type ProviderParam struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	Node  *snowflake.Node
}

func NewProvider(p ProviderParam) domain.Provider {
	return &Provider{
		log:   p.Log.Named("datasource.demo"),
		clock: p.Clock,
		node:  p.Node,
	}
}

// Fetch rebuilds the synthetic dataset anchored at the current day. The
// random source is seeded, so two fetches at the same instant agree.
func (p *Provider) Fetch(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}

	now := p.clock.Now()
	rng := rand.New(rand.NewSource(randSeed))

	machineIDs := make([]string, 8)
	machineNames := make(record.NameLookup, len(machineIDs))
	for i := range machineIDs {
		machineIDs[i] = p.node.Generate().String()
		machineNames[machineIDs[i]] = fmt.Sprintf("Machine %c - Lobby %d", 'A'+i, i+1)
	}

	productNames := make(record.NameLookup, len(catalog))
	for _, prod := range catalog {
		productNames[prod.id] = prod.name
	}

	ds := domain.Dataset{
		MachineNames: machineNames,
		ProductNames: productNames,
	}
	ds.Sales = p.generateSales(rng, now, machineIDs)
	ds.Snapshots = generateSnapshots(rng, machineIDs)
	ds.Runs, ds.Stops = p.generateRoutes(rng, now, machineIDs)
	ds.Prospects = generateProspects(rng, now)

	p.log.Debug("synthetic dataset generated",
		zap.Int("sales", len(ds.Sales)),
		zap.Int("snapshots", len(ds.Snapshots)),
		zap.Int("runs", len(ds.Runs)),
		zap.Int("prospects", len(ds.Prospects)),
	)
	return ds, nil
}

// generateSales covers the last 60 days. Machine 0 goes silent for the final
// three days and machine 1 halves its volume in the recent half, so the
// stockout and mover reports have something to show.
func (p *Provider) generateSales(rng *rand.Rand, now time.Time, machineIDs []string) []record.Raw {
	var sales []record.Raw
	today := now.UTC().Truncate(24 * time.Hour)

	for dayOffset := 59; dayOffset >= 0; dayOffset-- {
		day := today.AddDate(0, 0, -dayOffset)
		for mi, machineID := range machineIDs {
			if mi == 0 && dayOffset < 3 {
				continue
			}
			txPerDay := 2 + rng.Intn(4)
			if mi == 1 && dayOffset < 30 {
				txPerDay /= 2
			}
			for t := 0; t < txPerDay; t++ {
				prod := catalog[rng.Intn(len(catalog))]
				occurredAt := day.Add(time.Duration(8+rng.Intn(12)) * time.Hour)
				row := record.Raw{
					"machine_id":       machineID,
					"product_id":       prod.id,
					"occurred_at":      occurredAt.Format(time.RFC3339),
					"quantity":         int64(1),
					"unit_price_cents": prod.priceCents,
					"unit_cost_cents":  prod.costCents,
				}
				// a slice of rows arrives as CSV-shaped strings upstream
				if rng.Intn(10) == 0 {
					row["quantity"] = "1"
					row["unit_price_cents"] = fmt.Sprintf("%d", prod.priceCents)
				}
				if rng.Intn(40) == 0 {
					row["occurred_at"] = day.Format("2006-01-02")
				}
				sales = append(sales, row)
			}
		}
	}
	return sales
}

func generateSnapshots(rng *rand.Rand, machineIDs []string) []record.Raw {
	var snapshots []record.Raw
	for mi, machineID := range machineIDs {
		for pi, prod := range catalog {
			par := int64(10 + rng.Intn(10))
			qty := rng.Int63n(par + 1)
			if mi == 0 && pi < 3 {
				qty = 0
			}
			velocity := float64(rng.Intn(7)) * 0.9
			row := record.Raw{
				"machine_id":     machineID,
				"product_id":     prod.id,
				"slot_id":        fmt.Sprintf("%c%d", 'A'+pi/4, pi%4+1),
				"current_qty":    qty,
				"par_level":      par,
				"reorder_point":  par / 3,
				"sales_velocity": velocity,
			}
			if velocity > 0 {
				row["days_of_supply"] = float64(qty) / velocity
			}
			// some planograms never got par levels entered
			if rng.Intn(12) == 0 {
				delete(row, "par_level")
				delete(row, "reorder_point")
			}
			snapshots = append(snapshots, row)
		}
	}
	return snapshots
}

func (p *Provider) generateRoutes(rng *rand.Rand, now time.Time, machineIDs []string) (runs, stops []record.Raw) {
	routes := []string{"Downtown Loop", "Campus Circuit"}
	drivers := []string{"Alex Rivera", "Sam Okafor", "Jordan Lee"}
	today := now.UTC().Truncate(24 * time.Hour)

	for dayOffset := 13; dayOffset >= 0; dayOffset-- {
		day := today.AddDate(0, 0, -dayOffset)
		for ri, route := range routes {
			runID := p.node.Generate().String()
			startedAt := day.Add(time.Duration(7+ri) * time.Hour)
			finishedAt := startedAt.Add(time.Duration(3+rng.Intn(3)) * time.Hour)
			run := record.Raw{
				"id":          runID,
				"route_name":  route,
				"driver_name": drivers[(dayOffset+ri)%len(drivers)],
				"started_at":  startedAt.Format(time.RFC3339),
				"finished_at": finishedAt.Format(time.RFC3339),
			}
			// the occasional run never gets closed out in the field app
			if rng.Intn(15) == 0 {
				delete(run, "finished_at")
			}
			runs = append(runs, run)

			half := len(machineIDs) / 2
			start := ri * half
			for _, machineID := range machineIDs[start : start+half] {
				stops = append(stops, record.Raw{
					"run_id":          runID,
					"machine_id":      machineID,
					"miles":           1 + rng.Float64()*4,
					"service_minutes": float64(5 + rng.Intn(15)),
				})
			}
		}
	}
	return runs, stops
}

func generateProspects(rng *rand.Rand, now time.Time) []record.Raw {
	stages := []string{"new", "contacted", "qualified", "proposal", "won", "lost", "closed_won", "QUOTE", "mystery"}
	var prospects []record.Raw
	entropy := rng

	for i := 0; i < 40; i++ {
		createdAt := now.AddDate(0, 0, -rng.Intn(90))
		stage := stages[rng.Intn(len(stages))]
		row := record.Raw{
			"id":                    ulid.MustNew(ulid.Timestamp(createdAt), entropy).String(),
			"stage":                 stage,
			"created_at":            createdAt.Format(time.RFC3339),
			"estimated_value_cents": int64(50_000 + rng.Intn(20)*25_000),
			"source":                prospectSources[rng.Intn(len(prospectSources))],
		}
		switch record.NormalizeStage(stage) {
		case record.StageWon:
			wonAt := createdAt.AddDate(0, 0, 5+rng.Intn(30))
			row["won_at"] = wonAt.Format(time.RFC3339)
		case record.StageLost:
			lostAt := createdAt.AddDate(0, 0, 3+rng.Intn(40))
			row["lost_at"] = lostAt.Format(time.RFC3339)
		default:
			if rng.Intn(3) > 0 {
				followUp := now.AddDate(0, 0, rng.Intn(14))
				row["next_follow_up_at"] = followUp.Format(time.RFC3339)
			}
		}
		prospects = append(prospects, row)
	}
	return prospects
}
