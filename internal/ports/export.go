package ports

type ExportItem struct {
	Seq         int
	SourceText  string
	Translation string
}

type Exporter interface {
	Format() string
	Export(language string, items []ExportItem) ([]byte, error)
}
