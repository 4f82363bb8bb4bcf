package ml

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// StandardScaler centers a numeric column and scales it to unit variance.
type StandardScaler struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// FitStandardScaler computes the population mean and standard deviation of values.
// A constant column gets a scale of 1 so it transforms to zero.
func FitStandardScaler(values []float64) StandardScaler {
	if len(values) == 0 {
		return StandardScaler{Scale: 1}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	scale := math.Sqrt(sq / float64(len(values)))
	if scale == 0 {
		scale = 1
	}
	return StandardScaler{Mean: mean, Scale: scale}
}

func (s StandardScaler) Transform(v float64) float64 {
	return (v - s.Mean) / s.Scale
}

// OneHotEncoder maps each categorical column to indicator features.
// Values not seen during fitting encode as all zeros.
type OneHotEncoder struct {
	Columns    []string   `json:"columns"`
	Categories [][]string `json:"categories"`
}

// FitOneHotEncoder collects the sorted distinct values of every column.
func FitOneHotEncoder(columns []string, rows []map[string]string) OneHotEncoder {
	enc := OneHotEncoder{Columns: columns, Categories: make([][]string, len(columns))}
	for i, col := range columns {
		seen := map[string]struct{}{}
		for _, row := range rows {
			seen[row[col]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		enc.Categories[i] = cats
	}
	return enc
}

// Width is the number of indicator features produced.
func (e OneHotEncoder) Width() int {
	n := 0
	for _, c := range e.Categories {
		n += len(c)
	}
	return n
}

// Transform writes the indicators for row into dst, which must have Width elements.
func (e OneHotEncoder) Transform(row map[string]string, dst []float64) {
	offset := 0
	for i, col := range e.Columns {
		cats := e.Categories[i]
		v := row[col]
		if j := sort.SearchStrings(cats, v); j < len(cats) && cats[j] == v {
			dst[offset+j] = 1
		}
		offset += len(cats)
	}
}

// tokenPattern matches Unicode word runs; RE2's \w is ASCII only.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TfidfVectorizer turns free text into l2-normalized TF-IDF weights over a fixed vocabulary
// of word n-grams. Tokens are lowercased runs of two or more Unicode letters, digits or underscores.
type TfidfVectorizer struct {
	NGramMin    int            `json:"ngram_min"`
	NGramMax    int            `json:"ngram_max"`
	MaxFeatures int            `json:"max_features"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

// NewTfidfVectorizer returns an unfitted vectorizer.
func NewTfidfVectorizer(ngramMin, ngramMax, maxFeatures int) *TfidfVectorizer {
	return &TfidfVectorizer{NGramMin: ngramMin, NGramMax: ngramMax, MaxFeatures: maxFeatures}
}

func (t *TfidfVectorizer) analyze(doc string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	var terms []string
	for n := t.NGramMin; n <= t.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Fit learns the vocabulary and smoothed inverse document frequencies of docs.
// When the corpus has more terms than MaxFeatures, the most frequent ones are kept.
func (t *TfidfVectorizer) Fit(docs []string) {
	termFreq := map[string]int{}
	docFreq := map[string]int{}
	for _, doc := range docs {
		seen := map[string]struct{}{}
		for _, term := range t.analyze(doc) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if t.MaxFeatures > 0 && len(terms) > t.MaxFeatures {
		sort.SliceStable(terms, func(i, j int) bool { return termFreq[terms[i]] > termFreq[terms[j]] })
		terms = terms[:t.MaxFeatures]
		sort.Strings(terms)
	}

	n := float64(len(docs))
	t.Vocabulary = make(map[string]int, len(terms))
	t.IDF = make([]float64, len(terms))
	for i, term := range terms {
		t.Vocabulary[term] = i
		t.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
}

// Width is the vocabulary size.
func (t *TfidfVectorizer) Width() int {
	return len(t.IDF)
}

// Transform writes the weights for doc into dst, which must have Width elements.
func (t *TfidfVectorizer) Transform(doc string, dst []float64) {
	for _, term := range t.analyze(doc) {
		if i, ok := t.Vocabulary[term]; ok {
			dst[i]++
		}
	}
	var norm float64
	for i := range dst {
		dst[i] *= t.IDF[i]
		norm += dst[i] * dst[i]
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range dst {
		dst[i] /= norm
	}
}
