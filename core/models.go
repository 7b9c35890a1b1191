package core

// ID is an opaque identifier for stored entities.
// IDs are assigned by the store on insert; the zero value means "not yet stored".
type ID string

// Document is an ingestable unit of text, split into ordered chunks.
// The caller owns a Document until it is handed to an import; after a
// successful import the store holds the canonical copy.
type Document struct {
	Id     ID
	Title  string
	Labels []string
	Chunks []*Chunk
	Meta   map[string]string // Free-form metadata (reader, chunker, embedder settings)
}

// Chunk is a contiguous slice of a document's text. It is the unit of
// embedding and storage.
type Chunk struct {
	DocId      ID     // Back-reference to the owning document, stamped before import
	Title      string // Inherited from the document
	Labels     []string
	Content    string
	Seq        int       // Sequence index, unique within the document
	Vector     []float32 // Embedding vector, nil until vectorized
	Projection []float32 // Reduced 3-D projection of Vector, nil until computed
}

// ChunkTexts returns the chunk contents in sequence order.
// Chunks are expected to already be ordered by Seq.
func (d *Document) ChunkTexts() []string {
	texts := make([]string, len(d.Chunks))
	for i, chunk := range d.Chunks {
		texts[i] = chunk.Content
	}
	return texts
}

// StampChunks writes the document's identity onto every chunk.
// Called by the importer once the document record has an assigned id.
func (d *Document) StampChunks() {
	for _, chunk := range d.Chunks {
		chunk.DocId = d.Id
		chunk.Title = d.Title
		chunk.Labels = d.Labels
	}
}
