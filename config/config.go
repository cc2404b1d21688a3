// Package config loads the benchmark configuration from YAML and converts
// its case descriptions into harness parameters.
package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/blas"
	"gopkg.in/yaml.v3"

	"github.com/notargets/occablas"
	"github.com/notargets/occablas/harness"
)

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Device struct {
		// Props is the OCCA device properties JSON; empty means probe for
		// the best available backend.
		Props         string `yaml:"props"`
		Queues        int    `yaml:"queues"`
		GlobalMemSize int64  `yaml:"globalMemSize"`
		MaxAllocSize  int64  `yaml:"maxAllocSize"`
	} `yaml:"device"`
	Bench struct {
		Iterations int    `yaml:"iterations"`
		Cases      []Case `yaml:"cases"`
	} `yaml:"bench"`
}

// Case describes one benchmark case. Alpha and Beta are optional; when
// absent the data generator draws them from the seeded stream.
type Case struct {
	Routine string `yaml:"routine"` // gemv or hpr
	Type    string `yaml:"type"`    // s, d, c or z
	Order   string `yaml:"order"`   // row or column
	Trans   string `yaml:"trans"`   // n, t or c
	Uplo    string `yaml:"uplo"`    // upper or lower

	M   int `yaml:"m"` // gemv only
	N   int `yaml:"n"`
	Lda int `yaml:"lda"`

	OffA int `yaml:"offA"`
	OffX int `yaml:"offX"`
	OffY int `yaml:"offY"`
	IncX int `yaml:"incX"`
	IncY int `yaml:"incY"`

	Alpha *float64 `yaml:"alpha"`
	Beta  *float64 `yaml:"beta"`

	Seed   int64 `yaml:"seed"`
	Queues int   `yaml:"queues"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// Params converts the case description into harness parameters, applying
// defaults for omitted fields.
func (c Case) Params() (harness.TestParams, error) {
	var p harness.TestParams

	order, err := parseOrder(c.Order)
	if err != nil {
		return p, err
	}
	trans, err := parseTrans(c.Trans)
	if err != nil {
		return p, err
	}
	uplo, err := parseUplo(c.Uplo)
	if err != nil {
		return p, err
	}

	p = harness.TestParams{
		Order: order, TransA: trans, Uplo: uplo,
		M: c.M, N: c.N, Lda: c.Lda,
		OffA: c.OffA, OffX: c.OffX, OffY: c.OffY,
		IncX: c.IncX, IncY: c.IncY,
		Seed: c.Seed, NumQueues: c.Queues,
	}
	if p.IncX == 0 {
		p.IncX = 1
	}
	if p.IncY == 0 {
		p.IncY = 1
	}
	if p.Lda == 0 {
		if order == occablas.ColMajor {
			p.Lda = max(p.M, 1)
		} else {
			p.Lda = max(p.N, 1)
		}
	}
	if c.Alpha != nil {
		p.UseAlpha = true
		p.Alpha = complex(*c.Alpha, 0)
	}
	if c.Beta != nil {
		p.UseBeta = true
		p.Beta = complex(*c.Beta, 0)
	}
	return p, p.Validate()
}

func parseOrder(s string) (occablas.Order, error) {
	switch s {
	case "", "column", "col":
		return occablas.ColMajor, nil
	case "row":
		return occablas.RowMajor, nil
	}
	return 0, fmt.Errorf("unknown order %q", s)
}

func parseTrans(s string) (blas.Transpose, error) {
	switch s {
	case "", "n", "notrans":
		return blas.NoTrans, nil
	case "t", "trans":
		return blas.Trans, nil
	case "c", "conjtrans":
		return blas.ConjTrans, nil
	}
	return 0, fmt.Errorf("unknown trans %q", s)
}

func parseUplo(s string) (blas.Uplo, error) {
	switch s {
	case "", "upper", "u":
		return blas.Upper, nil
	case "lower", "l":
		return blas.Lower, nil
	}
	return 0, fmt.Errorf("unknown uplo %q", s)
}
