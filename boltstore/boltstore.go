// Package boltstore is a concrete daf.Format implementation backed by
// go.etcd.io/bbolt, a single-file embedded key/value store (SPEC_FULL.md
// §4.9/C10). It is not byte-compatible with HDF5 and makes no claim to be;
// spec.md §1 places concrete on-disk codecs outside the core's scope, and
// this package satisfies only the interface surface the core requires.
package boltstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scidaf/daf"
	"github.com/scidaf/daf/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketScalars  = []byte("scalars")
	bucketAxes     = []byte("axes")
	bucketVectors  = []byte("vectors")
	bucketMatrices = []byte("matrices")
	bucketMeta     = []byte("meta")

	metaKeyID     = []byte("id")
	metaKeyHeader = []byte("header")
	metaKeyFooter = []byte("footer")
	axisLenSuffix = []byte("\x00len")
)

// Store is a single-file dataset backed by bbolt. Every mutating method
// runs inside one db.Update transaction; every reading method runs inside
// one db.View transaction. The dataset's own Lock still wraps every call,
// giving the reentrant readers-writer discipline spec.md demands across
// multiple calls (e.g. the empty-allocator protocol spanning a get_empty
// and a later seal) - bbolt's transaction only gives atomicity of the
// on-disk state change, not cross-call exclusion.
type Store struct {
	db   *bolt.DB
	id   string
	name string
	lock *daf.Lock
	path string
}

// Open opens (creating if absent) a bbolt-backed dataset at path, named
// name for error messages. A fresh file is minted a random dataset ID; an
// existing file's ID is read back from meta/id.
func Open(path, name string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", path)
	}
	db, err := bolt.Open(path, 0o666, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	s := &Store{db: db, name: name, lock: daf.NewLock(), path: path}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketScalars, bucketAxes, bucketVectors, bucketMatrices, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if existing := meta.Get(metaKeyID); existing != nil {
			s.id = string(existing)
			return nil
		}
		id := daf.NewDatasetID()
		s.id = id
		return meta.Put(metaKeyID, []byte(id))
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}


func (s *Store) Close() error { return s.db.Close() }
func (s *Store) Path() string { return s.path }

func (s *Store) ID() string     { return s.id }
func (s *Store) Name() string   { return s.name }
func (s *Store) Lock() *daf.Lock { return s.lock }
func (s *Store) IsWriter() bool { return true }

func (s *Store) DescriptionHeader() string {
	var out string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(metaKeyHeader); v != nil {
			out = string(v)
		}
		return nil
	})
	return out
}

func (s *Store) DescriptionFooter() string {
	var out string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(metaKeyFooter); v != nil {
			out = string(v)
		}
		return nil
	})
	return out
}

// SetDescription sets the dataset's free-text header/footer.
func (s *Store) SetDescription(header, footer string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(metaKeyHeader, []byte(header)); err != nil {
			return err
		}
		return meta.Put(metaKeyFooter, []byte(footer))
	})
}

func versionMetaKey(key daf.DataKey) []byte {
	return []byte("version\x00" + key.String())
}

func (s *Store) VersionCounter(ctx context.Context, key daf.DataKey) (uint32, error) {
	var out uint32
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			out = decodeU32(tx.Bucket(bucketMeta).Get(versionMetaKey(key)))
			return nil
		})
	})
	if out == 0 {
		out = 1
	}
	return out, err
}

func (s *Store) IncrementVersionCounter(ctx context.Context, key daf.DataKey) (uint32, error) {
	var out uint32
	err := s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			meta := tx.Bucket(bucketMeta)
			mk := versionMetaKey(key)
			cur := decodeU32(meta.Get(mk))
			if cur == 0 { // never bumped: VersionCounter reports 1
				cur = 1
			}
			out = cur + 1
			return meta.Put(mk, encodeU32(out))
		})
	})
	return out, err
}

func (s *Store) bumpVersion(tx *bolt.Tx, key daf.DataKey) error {
	meta := tx.Bucket(bucketMeta)
	mk := versionMetaKey(key)
	cur := decodeU32(meta.Get(mk))
	if cur == 0 { // never bumped: VersionCounter reports 1
		cur = 1
	}
	return meta.Put(mk, encodeU32(cur+1))
}

// --- Scalars ---

func (s *Store) HasScalar(ctx context.Context, name string) (bool, error) {
	var out bool
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			out = tx.Bucket(bucketScalars).Get([]byte(name)) != nil
			return nil
		})
	})
	return out, err
}

func (s *Store) GetScalar(ctx context.Context, name string) (daf.Scalar, error) {
	var out daf.Scalar
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			data := tx.Bucket(bucketScalars).Get([]byte(name))
			if data == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing scalar: %s\nin the daf data: %s", name, s.name))
			}
			kind, value, err := decodeScalar(data)
			if err != nil {
				return err
			}
			out = daf.Scalar{Kind: kind, Value: value}
			return nil
		})
	})
	return out, err
}

func (s *Store) SetScalar(ctx context.Context, name string, value daf.Scalar) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			data, err := encodeScalar(value.Kind, value.Value)
			if err != nil {
				return err
			}
			if err := tx.Bucket(bucketScalars).Put([]byte(name), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.ScalarNamesKey())
		})
	})
}

func (s *Store) DeleteScalar(ctx context.Context, name string, forSet bool) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketScalars)
			if b.Get([]byte(name)) == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing scalar: %s\nin the daf data: %s", name, s.name))
			}
			if err := b.Delete([]byte(name)); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.ScalarNamesKey())
		})
	})
}

func (s *Store) ScalarNames(ctx context.Context) ([]string, error) {
	var out []string
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketScalars).ForEach(func(k, _ []byte) error {
				out = append(out, string(k))
				return nil
			})
		})
	})
	return out, err
}

// --- Axes ---

func axisEntryKey(i int) []byte { return []byte(fmt.Sprintf("%012d", i)) }

func (s *Store) HasAxis(ctx context.Context, axis string, forChange bool) (bool, error) {
	var out bool
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			out = tx.Bucket(bucketAxes).Bucket([]byte(axis)) != nil
			return nil
		})
	})
	return out, err
}

func (s *Store) AddAxis(ctx context.Context, axis string, entries []string) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			axes := tx.Bucket(bucketAxes)
			if axes.Bucket([]byte(axis)) != nil {
				return errors.New(errors.AlreadyExists, fmt.Sprintf("existing axis: %s\nin the daf data: %s", axis, s.name))
			}
			b, err := axes.CreateBucket([]byte(axis))
			if err != nil {
				return err
			}
			for i, e := range entries {
				if err := b.Put(axisEntryKey(i), []byte(e)); err != nil {
					return err
				}
			}
			if err := b.Put(axisLenSuffix, encodeU32(uint32(len(entries)))); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.AxisNamesKey())
		})
	})
}

func (s *Store) DeleteAxis(ctx context.Context, axis string) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			axes := tx.Bucket(bucketAxes)
			if axes.Bucket([]byte(axis)) == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, s.name))
			}
			if err := axes.DeleteBucket([]byte(axis)); err != nil {
				return err
			}
			if vectors := tx.Bucket(bucketVectors).Bucket([]byte(axis)); vectors != nil {
				if err := tx.Bucket(bucketVectors).DeleteBucket([]byte(axis)); err != nil {
					return err
				}
			}
			if err := deleteMatricesForAxis(tx, axis); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.AxisNamesKey())
		})
	})
}

// deleteMatricesForAxis removes every matrix bucket whose rows or cols is
// axis, cascading the same way memory.go's DeleteAxis does.
func deleteMatricesForAxis(tx *bolt.Tx, axis string) error {
	matrices := tx.Bucket(bucketMatrices)
	c := matrices.Cursor()
	var rowsToDelete [][]byte
	for rows, _ := c.First(); rows != nil; rows, _ = c.Next() {
		rowsToDelete = append(rowsToDelete, append([]byte(nil), rows...))
	}
	for _, rows := range rowsToDelete {
		if string(rows) == axis {
			if err := matrices.DeleteBucket(rows); err != nil {
				return err
			}
			continue
		}
		rowsBucket := matrices.Bucket(rows)
		if rowsBucket == nil {
			continue
		}
		if rowsBucket.Bucket([]byte(axis)) != nil {
			if err := rowsBucket.DeleteBucket([]byte(axis)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) axisBucket(tx *bolt.Tx, axis string) (*bolt.Bucket, error) {
	b := tx.Bucket(bucketAxes).Bucket([]byte(axis))
	if b == nil {
		return nil, errors.New(errors.NotFound, fmt.Sprintf("missing axis: %s\nin the daf data: %s", axis, s.name))
	}
	return b, nil
}

func (s *Store) AxisLength(ctx context.Context, axis string) (int, error) {
	var out int
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, err := s.axisBucket(tx, axis)
			if err != nil {
				return err
			}
			out = int(decodeU32(b.Get(axisLenSuffix)))
			return nil
		})
	})
	return out, err
}

func (s *Store) AxisEntries(ctx context.Context, axis string) ([]string, error) {
	var out []string
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, err := s.axisBucket(tx, axis)
			if err != nil {
				return err
			}
			n := int(decodeU32(b.Get(axisLenSuffix)))
			out = make([]string, n)
			for i := 0; i < n; i++ {
				out[i] = string(b.Get(axisEntryKey(i)))
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) AxisNames(ctx context.Context) ([]string, error) {
	var out []string
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketAxes).ForEach(func(k, v []byte) error {
				if v == nil {
					out = append(out, string(k))
				}
				return nil
			})
		})
	})
	return out, err
}

// --- Vectors ---

func (s *Store) vectorAxisBucket(tx *bolt.Tx, axis string, create bool) (*bolt.Bucket, error) {
	vectors := tx.Bucket(bucketVectors)
	if create {
		return vectors.CreateBucketIfNotExists([]byte(axis))
	}
	b := vectors.Bucket([]byte(axis))
	return b, nil
}

func (s *Store) HasVector(ctx context.Context, axis, name string) (bool, error) {
	var out bool
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, _ := s.vectorAxisBucket(tx, axis, false)
			out = b != nil && b.Get([]byte(name)) != nil
			return nil
		})
	})
	return out, err
}

func (s *Store) GetVector(ctx context.Context, axis, name string) (daf.Vector, error) {
	var out daf.Vector
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, _ := s.vectorAxisBucket(tx, axis, false)
			var data []byte
			if b != nil {
				data = b.Get([]byte(name))
			}
			if data == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, s.name))
			}
			kind, values, err := decodeSlice(data)
			if err != nil {
				return err
			}
			out = daf.Vector{Kind: kind, Values: values}
			return nil
		})
	})
	return out, err
}

func (s *Store) SetVector(ctx context.Context, axis, name string, value daf.Vector) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			if _, err := s.axisBucket(tx, axis); err != nil {
				return err
			}
			b, err := s.vectorAxisBucket(tx, axis, true)
			if err != nil {
				return err
			}
			data, err := encodeSlice(value.Kind, value.Values)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.VectorKey(axis, name))
		})
	})
}

func (s *Store) DeleteVector(ctx context.Context, axis, name string, forSet bool) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			b, _ := s.vectorAxisBucket(tx, axis, false)
			if b == nil || b.Get([]byte(name)) == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing vector: %s\nfor the axis: %s\nin the daf data: %s", name, axis, s.name))
			}
			if err := b.Delete([]byte(name)); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.VectorKey(axis, name))
		})
	})
}

func (s *Store) VectorNames(ctx context.Context, axis string) ([]string, error) {
	var out []string
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, _ := s.vectorAxisBucket(tx, axis, false)
			if b == nil {
				return nil
			}
			return b.ForEach(func(k, _ []byte) error {
				out = append(out, string(k))
				return nil
			})
		})
	})
	return out, err
}

func (s *Store) GetEmptyDenseVector(ctx context.Context, axis, name string, kind daf.ElementKind) (*daf.VectorHandle, error) {
	n, err := s.AxisLength(ctx, axis)
	if err != nil {
		return nil, err
	}
	t, err := goType(kind)
	if err != nil {
		return nil, err
	}
	values := makeZeroSlice(t, n)
	heldCtx, release, err := s.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	_ = heldCtx
	return daf.NewVectorHandle(values, daf.NewGuard(release), func() error {
		return s.db.Update(func(tx *bolt.Tx) error {
			b, err := s.vectorAxisBucket(tx, axis, true)
			if err != nil {
				return err
			}
			data, err := encodeSlice(kind, values)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.VectorKey(axis, name))
		})
	}), nil
}

func (s *Store) GetEmptySparseVector(ctx context.Context, axis, name string, kind daf.ElementKind, nnz int, indKind daf.ElementKind) (*daf.SparseVectorHandle, error) {
	if _, err := s.AxisLength(ctx, axis); err != nil {
		return nil, err
	}
	t, err := goType(kind)
	if err != nil {
		return nil, err
	}
	values := makeZeroSlice(t, nnz)
	indices := make([]int, nnz)
	heldCtx, release, err := s.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	_ = heldCtx
	// A sparse vector's dense spelling isn't kept on disk either (matching
	// memory.go): the seal just truncates values to the filled prefix, the
	// same compact spelling the in-memory backend stores.
	return daf.NewSparseVectorHandle(indices, values, daf.NewGuard(release), func(filled int) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			b, err := s.vectorAxisBucket(tx, axis, true)
			if err != nil {
				return err
			}
			data, err := encodeSlice(kind, sliceHead(values, filled))
			if err != nil {
				return err
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.VectorKey(axis, name))
		})
	}), nil
}

// --- Matrices ---

func (s *Store) matrixBucket(tx *bolt.Tx, rows, cols, name string, create bool) (*bolt.Bucket, error) {
	matrices := tx.Bucket(bucketMatrices)
	if create {
		rowsB, err := matrices.CreateBucketIfNotExists([]byte(rows))
		if err != nil {
			return nil, err
		}
		colsB, err := rowsB.CreateBucketIfNotExists([]byte(cols))
		if err != nil {
			return nil, err
		}
		return colsB.CreateBucketIfNotExists([]byte(name))
	}
	rowsB := matrices.Bucket([]byte(rows))
	if rowsB == nil {
		return nil, nil
	}
	colsB := rowsB.Bucket([]byte(cols))
	if colsB == nil {
		return nil, nil
	}
	return colsB.Bucket([]byte(name)), nil
}

func (s *Store) HasMatrix(ctx context.Context, rows, cols, name string, forRelayout bool) (bool, error) {
	var out bool
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, err := s.matrixBucket(tx, rows, cols, name, false)
			if err != nil {
				return err
			}
			out = b != nil
			return nil
		})
	})
	return out, err
}

func (s *Store) GetMatrix(ctx context.Context, rows, cols, name string, major daf.MajorAxis) (daf.Matrix, error) {
	var out daf.Matrix
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			b, err := s.matrixBucket(tx, rows, cols, name, false)
			if err != nil {
				return err
			}
			var data []byte
			if b != nil {
				data = b.Get([]byte(major.String()))
			}
			if data == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing %s layout of matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", major, name, rows, cols, s.name))
			}
			out, err = decodeMatrix(data, major)
			return err
		})
	})
	return out, err
}

func (s *Store) SetMatrix(ctx context.Context, rows, cols, name string, value daf.Matrix) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			if _, err := s.axisBucket(tx, rows); err != nil {
				return err
			}
			if _, err := s.axisBucket(tx, cols); err != nil {
				return err
			}
			b, err := s.matrixBucket(tx, rows, cols, name, true)
			if err != nil {
				return err
			}
			data, err := encodeMatrix(value)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(value.Layout.Major.String()), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.MatrixKey(rows, cols, name, value.Layout.Major))
		})
	})
}

func (s *Store) DeleteMatrix(ctx context.Context, rows, cols, name string, forSet bool) error {
	return s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			matrices := tx.Bucket(bucketMatrices)
			rowsB := matrices.Bucket([]byte(rows))
			if rowsB == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, s.name))
			}
			colsB := rowsB.Bucket([]byte(cols))
			if colsB == nil || colsB.Bucket([]byte(name)) == nil {
				return errors.New(errors.NotFound, fmt.Sprintf("missing matrix: %s\nfor the rows: %s\nand the columns: %s\nin the daf data: %s", name, rows, cols, s.name))
			}
			if err := colsB.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if err := s.bumpVersion(tx, daf.MatrixKey(rows, cols, name, daf.RowMajor)); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.MatrixKey(rows, cols, name, daf.ColumnMajor))
		})
	})
}

func (s *Store) MatrixNames(ctx context.Context, rows, cols string) ([]string, error) {
	var out []string
	err := s.lock.WithReadLock(ctx, func(ctx context.Context) error {
		return s.db.View(func(tx *bolt.Tx) error {
			matrices := tx.Bucket(bucketMatrices)
			rowsB := matrices.Bucket([]byte(rows))
			if rowsB == nil {
				return nil
			}
			colsB := rowsB.Bucket([]byte(cols))
			if colsB == nil {
				return nil
			}
			return colsB.ForEach(func(k, v []byte) error {
				if v == nil {
					out = append(out, string(k))
				}
				return nil
			})
		})
	})
	return out, err
}

func (s *Store) GetEmptyDenseMatrix(ctx context.Context, rows, cols, name string, kind daf.ElementKind, major daf.MajorAxis) (*daf.MatrixHandle, error) {
	rowsLen, err := s.AxisLength(ctx, rows)
	if err != nil {
		return nil, err
	}
	colsLen, err := s.AxisLength(ctx, cols)
	if err != nil {
		return nil, err
	}
	t, err := goType(kind)
	if err != nil {
		return nil, err
	}
	dense := makeZeroSlice(t, rowsLen*colsLen)
	heldCtx, release, err := s.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	_ = heldCtx
	layout := daf.MatrixLayout{Kind: kind, Shape: daf.Shape{Rows: rowsLen, Cols: colsLen}, Major: major, Storage: daf.Dense}
	return daf.NewMatrixHandle(dense, daf.NewGuard(release), func() error {
		return s.db.Update(func(tx *bolt.Tx) error {
			b, err := s.matrixBucket(tx, rows, cols, name, true)
			if err != nil {
				return err
			}
			data, err := encodeMatrix(daf.Matrix{Layout: layout, Dense: dense})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(major.String()), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.MatrixKey(rows, cols, name, major))
		})
	}), nil
}

func (s *Store) GetEmptySparseMatrix(ctx context.Context, rows, cols, name string, kind daf.ElementKind, major daf.MajorAxis, nnz int, indKind daf.ElementKind) (*daf.SparseMatrixHandle, error) {
	rowsLen, err := s.AxisLength(ctx, rows)
	if err != nil {
		return nil, err
	}
	colsLen, err := s.AxisLength(ctx, cols)
	if err != nil {
		return nil, err
	}
	majorDim := rowsLen
	if major == daf.ColumnMajor {
		majorDim = colsLen
	}
	t, err := goType(kind)
	if err != nil {
		return nil, err
	}
	values := makeZeroSlice(t, nnz)
	indices := make([]int, nnz)
	indptr := make([]int, majorDim+1)
	heldCtx, release, err := s.lock.AcquireWriteForHandle(ctx)
	if err != nil {
		return nil, err
	}
	_ = heldCtx
	layout := daf.MatrixLayout{Kind: kind, Shape: daf.Shape{Rows: rowsLen, Cols: colsLen}, Major: major, Storage: daf.Sparse, IndexKind: indKind, NNZ: nnz}
	return daf.NewSparseMatrixHandle(indices, indptr, values, daf.NewGuard(release), func(filled int) error {
		return s.db.Update(func(tx *bolt.Tx) error {
			b, err := s.matrixBucket(tx, rows, cols, name, true)
			if err != nil {
				return err
			}
			l := layout
			l.NNZ = filled
			mat := daf.Matrix{Layout: l, Sparse: &daf.SparseMatrix{Indptr: indptr, Indices: indices[:filled], Values: sliceHead(values, filled)}}
			data, err := encodeMatrix(mat)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(major.String()), data); err != nil {
				return err
			}
			return s.bumpVersion(tx, daf.MatrixKey(rows, cols, name, major))
		})
	}), nil
}

func (s *Store) Relayout(ctx context.Context, rows, cols, name string, from daf.MajorAxis) (daf.Matrix, error) {
	var out daf.Matrix
	err := s.lock.WithWriteLock(ctx, func(ctx context.Context) error {
		mat, err := s.GetMatrix(ctx, rows, cols, name, from)
		if err != nil {
			return err
		}
		out = transposeMatrix(mat)
		return s.SetMatrix(ctx, rows, cols, name, out)
	})
	return out, err
}
