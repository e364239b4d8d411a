package classifier

// ErrCategoryDoesNotExist is the error returned when a category doesn't exist.
type ErrCategoryDoesNotExist string

func (e ErrCategoryDoesNotExist) Error() string {
	return "classifier: category " + string(e) + " does not exist"
}

// Store is the storage interface for the count tables a classifier is fit from
type Store interface {
	Reset() error
	Categories() ([]string, error) // in the order they were added
	AddCategory(name string) error
	AddDocument(category string, v FeatureVector) error
	DocumentCounts() (map[string]int64, error)            // category -> count
	FeatureCounts(category string) (map[int]int64, error) // feature index -> count
}

type localStore struct {
	categories     []string
	documentCounts map[string]int64         // category -> count
	featureCounts  map[string]map[int]int64 // category -> feature -> count
}

// NewLocalStore returns a new in-memory store
func NewLocalStore() Store {
	ls := &localStore{}
	ls.Reset()
	return ls
}

func (ls *localStore) Reset() error {
	ls.categories = make([]string, 0)
	ls.documentCounts = make(map[string]int64)
	ls.featureCounts = make(map[string]map[int]int64)
	return nil
}

func (ls *localStore) Categories() ([]string, error) {
	return ls.categories, nil
}

func (ls *localStore) AddCategory(name string) error {
	if _, ok := ls.documentCounts[name]; ok {
		return nil
	}
	ls.categories = append(ls.categories, name)
	ls.documentCounts[name] = 0
	ls.featureCounts[name] = make(map[int]int64)
	return nil
}

func (ls *localStore) AddDocument(category string, v FeatureVector) error {
	fc, ok := ls.featureCounts[category]
	if !ok {
		return ErrCategoryDoesNotExist(category)
	}
	ls.documentCounts[category]++
	for j, i := range v.Indices {
		fc[i] += int64(v.Counts[j])
	}
	return nil
}

func (ls *localStore) DocumentCounts() (map[string]int64, error) {
	return ls.documentCounts, nil
}

func (ls *localStore) FeatureCounts(category string) (map[int]int64, error) {
	fc, ok := ls.featureCounts[category]
	if !ok {
		return nil, ErrCategoryDoesNotExist(category)
	}
	return fc, nil
}
