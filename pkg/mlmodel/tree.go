package mlmodel

import (
	"fmt"

	"github.com/mimir-aip/carprice/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// TreeNode is one node of a regression tree. Rows go left when
// row[Feature] <= Threshold.
type TreeNode struct {
	Feature   int       `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Left      *TreeNode `json:"left,omitempty" yaml:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty" yaml:"right,omitempty"`
	Value     float64   `json:"value" yaml:"value"` // Leaf prediction value
	IsLeaf    bool      `json:"leaf" yaml:"leaf"`
}

// validate checks the tree shape and returns the highest feature index used
func (n *TreeNode) validate(depth int) (int, error) {
	if n == nil {
		return -1, fmt.Errorf("missing tree node at depth %d", depth)
	}
	if n.IsLeaf {
		return -1, nil
	}
	if n.Feature < 0 {
		return -1, fmt.Errorf("negative feature index %d at depth %d", n.Feature, depth)
	}
	maxLeft, err := n.Left.validate(depth + 1)
	if err != nil {
		return -1, err
	}
	maxRight, err := n.Right.validate(depth + 1)
	if err != nil {
		return -1, err
	}
	return max(n.Feature, maxLeft, maxRight), nil
}

func (n *TreeNode) predict(row []float64) float64 {
	for !n.IsLeaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// DecisionTree is a single regression tree
type DecisionTree struct {
	root     *TreeNode
	minWidth int
}

// NewDecisionTree validates root and wraps it
func NewDecisionTree(root *TreeNode) (*DecisionTree, error) {
	maxFeature, err := root.validate(0)
	if err != nil {
		return nil, fmt.Errorf("invalid decision tree: %w", err)
	}
	return &DecisionTree{root: root, minWidth: maxFeature + 1}, nil
}

// Predict walks the tree
func (t *DecisionTree) Predict(row []float64) (float64, error) {
	if len(row) < t.minWidth {
		return 0, fmt.Errorf("decision tree reads feature %d, row has %d", t.minWidth-1, len(row))
	}
	return t.root.predict(row), nil
}

// Type returns the model type
func (t *DecisionTree) Type() models.ModelType {
	return models.ModelTypeDecisionTree
}

// MinWidth returns one more than the highest feature index used
func (t *DecisionTree) MinWidth() int {
	return t.minWidth
}

// RandomForest averages the predictions of its trees
type RandomForest struct {
	trees    []*DecisionTree
	minWidth int
}

// NewRandomForest validates and wraps a set of trees
func NewRandomForest(roots []*TreeNode) (*RandomForest, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	forest := &RandomForest{trees: make([]*DecisionTree, 0, len(roots))}
	for i, root := range roots {
		tree, err := NewDecisionTree(root)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		forest.trees = append(forest.trees, tree)
		forest.minWidth = max(forest.minWidth, tree.minWidth)
	}
	return forest, nil
}

// Predict returns the mean of the tree predictions
func (f *RandomForest) Predict(row []float64) (float64, error) {
	if len(row) < f.minWidth {
		return 0, fmt.Errorf("random forest reads feature %d, row has %d", f.minWidth-1, len(row))
	}
	predictions := make([]float64, len(f.trees))
	for i, tree := range f.trees {
		predictions[i] = tree.root.predict(row)
	}
	return stat.Mean(predictions, nil), nil
}

// Type returns the model type
func (f *RandomForest) Type() models.ModelType {
	return models.ModelTypeRandomForest
}

// MinWidth returns one more than the highest feature index used
func (f *RandomForest) MinWidth() int {
	return f.minWidth
}
