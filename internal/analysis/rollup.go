package analysis

import (
	"sort"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// BuildClassificationTree arranges taxonomy rows into the
// subject -> major unit -> minor unit tree the scope selector works from.
// Duplicate rows collapse; ordering is deterministic.
func BuildClassificationTree(rows []models.ClassificationRow) models.ClassificationTree {
	tree := make(models.ClassificationTree)
	seen := make(map[[3]string]struct{})

	for _, row := range rows {
		subject := Normalize(row.Subject)
		major := Normalize(row.MajorUnit)
		minor := Normalize(row.MinorUnit)
		if subject == "" {
			continue
		}
		if major == "" {
			major = models.UnclassifiedMajorUnit
		}
		if minor == "" {
			minor = models.DefaultMinorUnit
		}

		key := [3]string{subject, major, minor}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if tree[subject] == nil {
			tree[subject] = make(map[string][]string)
		}
		tree[subject][major] = append(tree[subject][major], minor)
	}

	for _, majors := range tree {
		for major := range majors {
			sort.Strings(majors[major])
		}
	}
	return tree
}

type rollupAcc struct {
	weightedScore float64
	scoredWeight  float64
	weightedAcc   float64
	attempts      int
	types         map[string]struct{}
	children      map[string]*rollupAcc
}

func newRollupAcc() *rollupAcc {
	return &rollupAcc{types: make(map[string]struct{}), children: make(map[string]*rollupAcc)}
}

func (a *rollupAcc) add(rec models.MasteryRecord) {
	if rec.TotalAttempts == 0 {
		return
	}
	w := float64(rec.TotalAttempts)
	if rec.DisplayScore >= 0 {
		a.weightedScore += rec.DisplayScore * w
		a.scoredWeight += w
	}
	a.weightedAcc += rec.Accuracy * w
	a.attempts += rec.TotalAttempts
	a.types[rec.DetailType] = struct{}{}
}

func (a *rollupAcc) child(name string) *rollupAcc {
	c, ok := a.children[name]
	if !ok {
		c = newRollupAcc()
		a.children[name] = c
	}
	return c
}

func (a *rollupAcc) toRollup(name string) models.UnitRollup {
	display := models.ScoreInsufficient
	if a.scoredWeight > 0 {
		display = round1(a.weightedScore / a.scoredWeight)
	}
	accuracy := 0.0
	if a.attempts > 0 {
		accuracy = round2(a.weightedAcc / float64(a.attempts))
	}

	names := make([]string, 0, len(a.children))
	for n := range a.children {
		names = append(names, n)
	}
	sort.Strings(names)

	var subs []models.UnitRollup
	for _, n := range names {
		subs = append(subs, a.children[n].toRollup(n))
	}

	return models.UnitRollup{
		Name:             name,
		DisplayScore:     display,
		Accuracy:         accuracy,
		TotalAttempts:    a.attempts,
		ConstituentTypes: len(a.types),
		SubUnits:         subs,
	}
}

// RollupUnits aggregates mastery records upward along the topic tree:
// subject -> major unit -> minor unit, each node carrying an attempt-weighted
// display score (over records with real scores), attempt-weighted accuracy,
// attempt totals and distinct detail-type counts. Records whose detail type
// the catalog does not know are skipped.
func RollupUnits(catalog *Catalog, records []models.MasteryRecord) []models.UnitRollup {
	paths := make(map[string]models.TopicPath)
	for _, q := range catalog.Questions() {
		if q.DetailType == "" {
			continue
		}
		if _, ok := paths[q.DetailType]; !ok {
			paths[q.DetailType] = q.Topic()
		}
	}

	root := newRollupAcc()
	for _, rec := range records {
		path, ok := paths[rec.DetailType]
		if !ok {
			continue
		}
		subject := root.child(path.Subject)
		major := subject.child(path.MajorUnit)
		minor := major.child(path.MinorUnit)
		subject.add(rec)
		major.add(rec)
		minor.add(rec)
	}

	names := make([]string, 0, len(root.children))
	for n := range root.children {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]models.UnitRollup, 0, len(names))
	for _, n := range names {
		out = append(out, root.children[n].toRollup(n))
	}
	return out
}
