// Package features turns normalized contacts into documents and the two
// feature matrices used downstream: keyword TF-IDF rows and dense embeddings.
package features

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"

	"connections/internal/domain"
)

// Builder computes Features from a normalized contact mapping.
type Builder struct {
	keywords domain.KeywordVectorizer
	embedder domain.Embedder
}

// NewBuilder returns a builder over the given keyword vectorizer and embedder.
func NewBuilder(keywords domain.KeywordVectorizer, embedder domain.Embedder) *Builder {
	return &Builder{keywords: keywords, embedder: embedder}
}

// Document joins every token of every entry with single spaces.
func Document(lists []domain.TokenList) string {
	var sb strings.Builder
	for _, list := range lists {
		for _, tok := range list {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(tok)
		}
	}
	return sb.String()
}

// Build produces one document, one TF-IDF row and one embedding per contact,
// all in contact order. The keyword vectorizer is refitted on the documents.
// Empty documents never reach the embedder; they get a zero vector.
func (b *Builder) Build(ctx context.Context, in domain.Contacts[domain.TokenList]) (domain.Features, error) {
	out := domain.Features{
		Names:      in.Names(),
		Documents:  make([]string, 0, in.Len()),
		Vocabulary: b.keywords.Vocabulary(),
	}
	in.Each(func(_ string, lists []domain.TokenList) {
		out.Documents = append(out.Documents, Document(lists))
	})

	if err := b.keywords.Fit(out.Documents); err != nil {
		return domain.Features{}, errors.Wrap(err, "fit keyword vectorizer")
	}
	out.TFIDF = make([]domain.SparseVector, len(out.Documents))
	for i, doc := range out.Documents {
		row, err := b.keywords.Transform(doc)
		if err != nil {
			return domain.Features{}, errors.Wrapf(err, "transform document of %q", out.Names[i])
		}
		out.TFIDF[i] = row
	}

	embeddings, err := b.embed(ctx, out.Documents)
	if err != nil {
		return domain.Features{}, err
	}
	out.Embeddings = embeddings
	return out, nil
}

func (b *Builder) embed(ctx context.Context, docs []string) ([][]float64, error) {
	var (
		idx   []int
		texts []string
	)
	for i, doc := range docs {
		if strings.TrimSpace(doc) != "" {
			idx = append(idx, i)
			texts = append(texts, doc)
		}
	}

	out := make([][]float64, len(docs))
	if len(texts) > 0 {
		vecs, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, errors.Wrapf(err, "embed documents with %s", b.embedder.Name())
		}
		if len(vecs) != len(texts) {
			return nil, errors.Errorf("embedder %s returned %d vectors for %d documents",
				b.embedder.Name(), len(vecs), len(texts))
		}
		for k, i := range idx {
			out[i] = vecs[k]
		}
	}

	// Remote embedders may only learn their width from the first response.
	dim := b.embedder.Dimension()
	if dim <= 0 && len(idx) > 0 {
		dim = len(out[idx[0]])
	}
	for i := range out {
		if out[i] == nil {
			out[i] = make([]float64, dim)
		}
	}
	return out, nil
}
