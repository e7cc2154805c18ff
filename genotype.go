package simcore

import (
	"strconv"
	"strings"

	"github.com/segmentio/ksuid"
)

// GenotypeNode is one point in the multi-locus mutation lineage tree (spec
// section 6's genotype_info/loci_vector): a fixed-length allele vector plus
// a back-pointer to the parent node it arose from by mutation. UID is a
// ksuid identity distinct from the dense ID used everywhere else in the
// package (ParasiteClone.GenotypeID, reporter foreign keys): ID is what the
// rest of the simulation threads through; UID is what a SQLiteReporter
// would print as a stable external name, grounded on the teacher's
// GenotypeNode.UID() (sequence_tree.go).
type GenotypeNode struct {
	ID       uint64
	UID      ksuid.KSUID
	Alleles  []int
	ParentID uint64 // 0 means root (no parent)
}

// GenotypeTree is the dedup set plus lineage graph over the multi-locus
// genotype space. Grounded on the teacher's GenotypeSet+GenotypeNode split
// (sequence_tree.go): GenotypeSet dedups by sequence, GenotypeNode tracks
// lineage; merged here into one type since this domain's genotype space is
// small and bounded by loci_vector; no locking is needed since dispatch is
// single-threaded (spec section 5), unlike the teacher's sync.RWMutex-guarded
// variant.
type GenotypeTree struct {
	allelesPerLocus []int
	mutationProb    []float64 // per-locus probability of mutating under drug pressure
	mutationEnabled bool

	byKey map[string]uint64
	nodes map[uint64]*GenotypeNode
	nextID uint64
}

// NewGenotypeTree creates a tree over a genotype space with the given
// number of alleles per locus (loci_vector), seeding a wild-type root node
// (all-zero alleles) as genotype id 1; id 0 is reserved as "no genotype".
func NewGenotypeTree(allelesPerLocus []int) *GenotypeTree {
	t := &GenotypeTree{
		allelesPerLocus: allelesPerLocus,
		mutationProb:    make([]float64, len(allelesPerLocus)),
		byKey:           make(map[string]uint64),
		nodes:           make(map[uint64]*GenotypeNode),
	}
	root := make([]int, len(allelesPerLocus))
	t.getOrCreate(root, 0)
	return t
}

// SetMutationProbability sets the per-locus mutation probability used by
// Inherit, loaded from drug_db's p_mutation for drugs affecting that locus.
func (t *GenotypeTree) SetMutationProbability(locus int, prob float64) {
	if locus >= 0 && locus < len(t.mutationProb) {
		t.mutationProb[locus] = prob
	}
}

// SetMutationEnabled toggles mutation tree-wide, the effect of the
// EventTurnOnMutation/EventTurnOffMutation population events.
func (t *GenotypeTree) SetMutationEnabled(enabled bool) { t.mutationEnabled = enabled }

func (t *GenotypeTree) key(alleles []int) string {
	parts := make([]string, len(alleles))
	for i, a := range alleles {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

func (t *GenotypeTree) getOrCreate(alleles []int, parentID uint64) uint64 {
	k := t.key(alleles)
	if id, ok := t.byKey[k]; ok {
		return id
	}
	t.nextID++
	id := t.nextID
	cp := make([]int, len(alleles))
	copy(cp, alleles)
	t.nodes[id] = &GenotypeNode{ID: id, UID: ksuid.New(), Alleles: cp, ParentID: parentID}
	t.byKey[k] = id
	return id
}

// Get returns the node for a genotype id, or nil if unknown.
func (t *GenotypeTree) Get(id uint64) *GenotypeNode { return t.nodes[id] }

// Inherit implements GenotypeSource: the genotype a freshly-infected clone
// is seeded with, starting from the donor's alleles and independently
// mutating each locus with probability mutationProb[locus] when mutation is
// enabled (spec 4.5.2's "possibly mutated from donor clone"; zero mutation
// probability reproduces the "genotypes stable across importations" edge
// case in spec section 8).
func (t *GenotypeTree) Inherit(donorID uint64, r *Random) uint64 {
	donor := t.nodes[donorID]
	if donor == nil {
		donor = t.nodes[1] // fall back to wild type root
	}
	if !t.mutationEnabled {
		return donor.ID
	}
	child := make([]int, len(donor.Alleles))
	copy(child, donor.Alleles)
	mutated := false
	for locus, prob := range t.mutationProb {
		if prob <= 0 || locus >= len(child) {
			continue
		}
		if r.Uniform() < prob {
			nAlleles := 2
			if locus < len(t.allelesPerLocus) {
				nAlleles = t.allelesPerLocus[locus]
			}
			if nAlleles < 2 {
				continue
			}
			newAllele := r.Intn(nAlleles - 1)
			if newAllele >= child[locus] {
				newAllele++
			}
			child[locus] = newAllele
			mutated = true
		}
	}
	if !mutated {
		return donor.ID
	}
	return t.getOrCreate(child, donor.ID)
}

// IntroduceMutant forces a new genotype descending from base, with the
// given locus set to alleleValue unconditionally (the mutant-introduction
// population events: IntroduceMutant/IntroduceAQMutant/
// IntroduceLumefantrineMutant/IntroducePlas2Copy, spec's event kind list and
// SUPPLEMENTED FEATURES item 5). Returns the resulting genotype id.
func (t *GenotypeTree) IntroduceMutant(baseID uint64, locus, alleleValue int) uint64 {
	base := t.nodes[baseID]
	if base == nil {
		base = t.nodes[1]
	}
	child := make([]int, len(base.Alleles))
	copy(child, base.Alleles)
	if locus >= 0 && locus < len(child) {
		child[locus] = alleleValue
	}
	return t.getOrCreate(child, base.ID)
}

// Size reports how many distinct genotypes have been observed, used by
// reporters sizing the `genotype` table.
func (t *GenotypeTree) Size() int { return len(t.nodes) }

// All returns every known node, for reporter flush passes. Callers must
// not mutate the returned map.
func (t *GenotypeTree) All() map[uint64]*GenotypeNode { return t.nodes }
