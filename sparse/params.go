package sparse

import "github.com/darkhanakh/claude-context/tokenize"

// Params is the BM25 parameter block of §6. Zero-value Params is not
// usable directly; call DefaultParams and override fields as needed.
type Params struct {
	// K1 controls term-frequency saturation.
	K1 float64 `json:"k1" yaml:"k1"`

	// B controls document-length normalization strength.
	B float64 `json:"b" yaml:"b"`

	// MinDF drops terms appearing in fewer than this many documents.
	MinDF int `json:"min_df" yaml:"min_df"`

	// MaxDFRatio drops terms appearing in more than this fraction of
	// documents.
	MaxDFRatio float64 `json:"max_df_ratio" yaml:"max_df_ratio"`

	// SublinearTF switches the term-frequency term to 1 + ln(tf).
	SublinearTF bool `json:"sublinear_tf" yaml:"sublinear_tf"`

	// TokenMode selects the tokenizer mode used to build and embed
	// against this vocabulary.
	TokenMode tokenize.Mode `json:"token_mode" yaml:"token_mode"`
}

// DefaultParams returns the §6 defaults: k1=1.2, b=0.75, min_df=1,
// max_df_ratio=0.85, sublinear_tf=false, token_mode="code".
func DefaultParams() Params {
	return Params{
		K1:          1.2,
		B:           0.75,
		MinDF:       1,
		MaxDFRatio:  0.85,
		SublinearTF: false,
		TokenMode:   tokenize.Code,
	}
}

// withDefaults fills any zero-valued field of p with the §6 default,
// leaving explicit zero values for booleans alone (false is a valid
// explicit choice for SublinearTF).
func withDefaults(p Params) Params {
	d := DefaultParams()
	if p.K1 == 0 {
		p.K1 = d.K1
	}
	if p.B == 0 {
		p.B = d.B
	}
	if p.MaxDFRatio == 0 {
		p.MaxDFRatio = d.MaxDFRatio
	}
	if p.TokenMode == "" {
		p.TokenMode = d.TokenMode
	}
	// MinDF's zero value is legal and left untouched; since every
	// counted term has a document frequency of at least 1, min_df=0
	// keeps the same terms as the default of 1.
	return p
}
