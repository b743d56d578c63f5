package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// ChunkStore хранит сериализованные спаунеры выгруженных чанков
type ChunkStore interface {
	// Put добавляет спаунеры чанка, перезаписывая совпадающие позиции
	Put(chunk vec.Vec2, spawners map[vec.Vec3]block.Metadata) error
	// Take возвращает спаунеры чанка и забывает их
	Take(chunk vec.Vec2) (map[vec.Vec3]block.Metadata, error)
	// Discard забывает спаунер в позиции (блок заменён)
	Discard(pos vec.Vec3) error
}

type memoryChunkStore struct {
	mu     sync.Mutex
	chunks map[vec.Vec2]map[vec.Vec3]block.Metadata
}

// NewMemoryChunkStore - хранилище выгруженных чанков в памяти
func NewMemoryChunkStore() ChunkStore {
	return &memoryChunkStore{chunks: make(map[vec.Vec2]map[vec.Vec3]block.Metadata)}
}

func (s *memoryChunkStore) Put(chunk vec.Vec2, spawners map[vec.Vec3]block.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst, ok := s.chunks[chunk]
	if !ok {
		dst = make(map[vec.Vec3]block.Metadata, len(spawners))
		s.chunks[chunk] = dst
	}
	for pos, tag := range spawners {
		dst[pos] = tag
	}
	return nil
}

func (s *memoryChunkStore) Take(chunk vec.Vec2) (map[vec.Vec3]block.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.chunks[chunk]
	delete(s.chunks, chunk)
	return out, nil
}

func (s *memoryChunkStore) Discard(pos vec.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk := pos.ToVec2().ToChunkCoords()
	if m, ok := s.chunks[chunk]; ok {
		delete(m, pos)
		if len(m) == 0 {
			delete(s.chunks, chunk)
		}
	}
	return nil
}

// chunkFile - формат файла чанка
type chunkFile struct {
	ChunkCoords  vec.Vec2                  `json:"chunk_coords"`
	Spawners     map[string]block.Metadata `json:"spawners"` // "x,y,z" -> метаданные
	Version      uint64                    `json:"version"`
	LastModified int64                     `json:"last_modified"`
}

// FileChunkStore хранит выгруженные чанки в JSON-файлах chunk_<x>_<z>.json
type FileChunkStore struct {
	mu       sync.Mutex
	basePath string
}

// NewFileChunkStore создаёт каталог basePath при необходимости
func NewFileChunkStore(basePath string) (*FileChunkStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}
	return &FileChunkStore{basePath: basePath}, nil
}

func (fs *FileChunkStore) Put(chunk vec.Vec2, spawners map[vec.Vec3]block.Metadata) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.read(chunk)
	if err != nil {
		return err
	}
	for pos, tag := range spawners {
		data.Spawners[posKey(pos)] = tag
	}
	return fs.write(chunk, data)
}

func (fs *FileChunkStore) Take(chunk vec.Vec2) (map[vec.Vec3]block.Metadata, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.read(chunk)
	if err != nil {
		return nil, err
	}
	out := make(map[vec.Vec3]block.Metadata, len(data.Spawners))
	for key, tag := range data.Spawners {
		pos, err := parsePosKey(key)
		if err != nil {
			return nil, fmt.Errorf("чанк %v: %w", chunk, err)
		}
		out[pos] = tag
	}
	if err := os.Remove(fs.filename(chunk)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return out, nil
}

func (fs *FileChunkStore) Discard(pos vec.Vec3) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	chunk := pos.ToVec2().ToChunkCoords()
	data, err := fs.read(chunk)
	if err != nil {
		return err
	}
	key := posKey(pos)
	if _, ok := data.Spawners[key]; !ok {
		return nil
	}
	delete(data.Spawners, key)
	if len(data.Spawners) == 0 {
		return os.Remove(fs.filename(chunk))
	}
	return fs.write(chunk, data)
}

func (fs *FileChunkStore) read(chunk vec.Vec2) (*chunkFile, error) {
	filename := fs.filename(chunk)
	raw, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return &chunkFile{ChunkCoords: chunk, Spawners: make(map[string]block.Metadata)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла чанка %s: %w", filename, err)
	}
	var data chunkFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации чанка %v: %w", chunk, err)
	}
	if data.Spawners == nil {
		data.Spawners = make(map[string]block.Metadata)
	}
	return &data, nil
}

// write пишет во временный файл и переименовывает, чтобы не оставить обрезанный чанк
func (fs *FileChunkStore) write(chunk vec.Vec2, data *chunkFile) error {
	data.Version++
	data.LastModified = time.Now().Unix()
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации чанка %v: %w", chunk, err)
	}
	filename := fs.filename(chunk)
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", tmp, err)
	}
	return os.Rename(tmp, filename)
}

func (fs *FileChunkStore) filename(chunk vec.Vec2) string {
	return filepath.Join(fs.basePath, fmt.Sprintf("chunk_%d_%d.json", chunk.X, chunk.Y))
}

func posKey(pos vec.Vec3) string {
	return fmt.Sprintf("%d,%d,%d", pos.X, pos.Y, pos.Z)
}

func parsePosKey(key string) (vec.Vec3, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return vec.Vec3{}, fmt.Errorf("неверный ключ позиции %q", key)
	}
	var xyz [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return vec.Vec3{}, fmt.Errorf("неверный ключ позиции %q", key)
		}
		xyz[i] = n
	}
	return vec.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
