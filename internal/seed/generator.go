// Package seed generates sample athlete records for an empty store.
package seed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/okian/medalgrid/internal/domain/model"
	"github.com/okian/medalgrid/pkg/logger"
)

const batchSize = 500

// Age range of generated athletes.
const (
	minAge   = 16
	ageRange = 25
)

// Medal profiles. Every athlete has won at least one medal.
const (
	caseOneBronze = iota
	caseSingleMedal
	caseFewMedals
	caseElite
	profileCount
)

var firstNames = []string{
	"Michael", "Natalie", "Ole", "Marit", "Anja", "Ian", "Kjetil", "Aksel", "Simone", "Usain",
	"Katie", "Ryan", "Allyson", "Shaun", "Lindsey", "Martin", "Kristin", "Bode", "Darya", "Evgeni",
}

var lastNames = []string{
	"Phelps", "Coughlin", "Bjørndalen", "Bjørgen", "Pärson", "Thorpe", "Jansrud", "Svindal", "Biles", "Bolt",
	"Ledecky", "Lochte", "Felix", "White", "Vonn", "Fourcade", "Størmer", "Miller", "Domracheva", "Plushenko",
}

var countries = []string{
	"United States", "Norway", "Sweden", "Australia", "Germany", "Canada", "France", "Russia", "China", "Jamaica",
}

var sports = []string{
	"Swimming", "Biathlon", "Cross Country Skiing", "Alpine Skiing", "Gymnastics", "Athletics", "Snowboarding", "Speed Skating",
}

// randomInt returns a value in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func pick(values []string) string {
	return values[randomInt(len(values))]
}

// Record returns one random athlete.
func Record() model.Record {
	rec := model.Record{
		Athlete: pick(firstNames) + " " + pick(lastNames),
		Age:     minAge + randomInt(ageRange),
		Country: pick(countries),
		Sport:   pick(sports),
	}
	switch randomInt(profileCount) {
	case caseOneBronze:
		rec.Bronze = 1
	case caseSingleMedal:
		switch randomInt(3) {
		case 0:
			rec.Gold = 1
		case 1:
			rec.Silver = 1
		default:
			rec.Bronze = 1
		}
	case caseFewMedals:
		rec.Gold = randomInt(2)
		rec.Silver = randomInt(3)
		rec.Bronze = 1 + randomInt(3)
	case caseElite:
		rec.Gold = 2 + randomInt(7)
		rec.Silver = randomInt(4)
		rec.Bronze = randomInt(4)
	}
	return rec
}

// Generate returns n random athletes.
func Generate(ctx context.Context, n int) ([]model.Record, error) {
	recs := make([]model.Record, n)
	for i := range recs {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generation cancelled after %d records: %w", i, err)
			}
		}
		recs[i] = Record()
	}
	return recs, nil
}

// BatchWriter stores records in bulk.
type BatchWriter interface {
	CreateBatch(ctx context.Context, recs []model.Record) (int, error)
}

// Seed generates n athletes and writes them in batches. It returns how many
// were written before any error.
func Seed(ctx context.Context, w BatchWriter, n int) (int, error) {
	recs, err := Generate(ctx, n)
	if err != nil {
		return 0, err
	}

	written := 0
	for start := 0; start < len(recs); start += batchSize {
		end := min(start+batchSize, len(recs))
		c, err := w.CreateBatch(ctx, recs[start:end])
		written += c
		if err != nil {
			return written, fmt.Errorf("seed batch at %d: %w", start, err)
		}
	}
	logger.Get().Info(ctx, "seeded records", logger.Int("count", written))
	return written, nil
}
