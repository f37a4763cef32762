package dataset

import (
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Troublor/erebus-sandwich/analysis/sandwich"
	"github.com/Troublor/erebus-sandwich/ir"
)

// FindingBSON is the BSON-serializable version of sandwich.Finding.
type FindingBSON struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Hash string             `bson:"hash"`

	Check      string `bson:"check"`
	Impact     string `bson:"impact"`
	Confidence string `bson:"confidence"`

	Contract string  `bson:"contract"`
	Address  *string `bson:"address,omitempty"`
	Function string  `bson:"function"`
	Node     int     `bson:"node"`
	Filename string  `bson:"filename"`
	Lines    []int   `bson:"lines"`

	Parameters  []string `bson:"parameters"`
	Sources     []string `bson:"sources"`
	Description string   `bson:"description"`

	// Origin is the IR export the finding was detected in.
	Origin     string    `bson:"origin"`
	DetectedAt time.Time `bson:"detectedAt"`
}

func NewFindingBSON(finding *sandwich.Finding, origin string) *FindingBSON {
	var address *string
	if finding.Contract.Address != nil {
		address = lo.ToPtr(finding.Contract.Address.Hex())
	}
	return &FindingBSON{
		Hash:       finding.Hash().Hex(),
		Check:      sandwich.Argument,
		Impact:     sandwich.Impact.String(),
		Confidence: sandwich.Confidence.String(),

		Contract: finding.Contract.Name,
		Address:  address,
		Function: finding.Function.Name,
		Node:     finding.Node.ID,
		Filename: finding.Node.Source.Filename,
		Lines:    lo.Ternary(finding.Node.Source.Lines == nil, []int{}, finding.Node.Source.Lines),

		Parameters: finding.Parameters,
		Sources: lo.Map(finding.Sources, func(v *ir.Variable, _ int) string {
			return v.ID
		}),
		Description: finding.Description(),

		Origin:     origin,
		DetectedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}
