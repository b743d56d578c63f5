// Package world - минимальный воксельный мир, на котором работают правила спаунеров:
// блоки, блок-сущности спаунеров, мобы, игроки, частицы и поток тиков.
package world

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/annel0/blockverse-tweaks/internal/logging"
	"github.com/annel0/blockverse-tweaks/internal/resource"
	"github.com/annel0/blockverse-tweaks/internal/spawner"
	"github.com/annel0/blockverse-tweaks/internal/vec"
	"github.com/annel0/blockverse-tweaks/internal/world/block"
)

// ErrQueueFull возвращается, если очередь команд тика переполнена
var ErrQueueFull = errors.New("world: очередь команд переполнена")

// Config - параметры мира
type Config struct {
	Dimension     resource.Location
	ClientSide    bool
	SpawnPoint    vec.Vec3
	Seed          int64
	CommandBuffer int        // размер очереди команд
	MaxParticles  int        // сколько последних частиц хранить
	MobLifetime   int        // через сколько тиков моб исчезает (0 - никогда)
	Chunks        ChunkStore // хранилище выгруженных чанков; nil - в памяти
}

// DefaultConfig возвращает конфигурацию серверного мира по умолчанию
func DefaultConfig() Config {
	return Config{
		Dimension:     resource.New("minecraft", "overworld"),
		CommandBuffer: 256,
		MaxParticles:  1024,
		MobLifetime:   600,
	}
}

// World реализует spawner.World. Изменяется только из потока тиков;
// другие горутины обращаются к нему через Enqueue/Do.
type World struct {
	mu         sync.RWMutex
	dimension  resource.Location
	clientSide bool
	spawnPoint vec.Vec3

	blocks   map[vec.Vec3]block.BlockID
	spawners map[vec.Vec3]*SpawnerEntity
	chunks   ChunkStore
	mobs     map[uint64]*mobEntry
	players  map[string]*Player

	particles    []Particle
	maxParticles int
	mobLifetime  uint64

	rng          *rand.Rand
	listeners    []Listener
	commands     chan func(*World)
	currentTick  uint64
	nextEntityID uint64
	log          *logging.Logger
}

type mobEntry struct {
	mob  Mob
	born uint64
}

var _ spawner.World = (*World)(nil)

// New создаёт пустой мир
func New(cfg Config) *World {
	if cfg.Dimension.IsZero() {
		cfg.Dimension = DefaultConfig().Dimension
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = DefaultConfig().CommandBuffer
	}
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = DefaultConfig().MaxParticles
	}
	if cfg.MobLifetime < 0 {
		cfg.MobLifetime = 0
	}
	if cfg.Chunks == nil {
		cfg.Chunks = NewMemoryChunkStore()
	}

	return &World{
		dimension:    cfg.Dimension,
		clientSide:   cfg.ClientSide,
		spawnPoint:   cfg.SpawnPoint,
		blocks:       make(map[vec.Vec3]block.BlockID),
		spawners:     make(map[vec.Vec3]*SpawnerEntity),
		chunks:       cfg.Chunks,
		mobs:         make(map[uint64]*mobEntry),
		players:      make(map[string]*Player),
		maxParticles: cfg.MaxParticles,
		mobLifetime:  uint64(cfg.MobLifetime),
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		commands:     make(chan func(*World), cfg.CommandBuffer),
		nextEntityID: 1000,
		log:          logging.GetComponentLogger("world"),
	}
}

// AddListener подписывает обработчик на события мира
func (w *World) AddListener(l Listener) {
	w.mu.Lock()
	w.listeners = append(w.listeners, l)
	w.mu.Unlock()
}

func (w *World) listenersSnapshot() []Listener {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Listener, len(w.listeners))
	copy(out, w.listeners)
	return out
}

func (w *World) IsClientSide() bool           { return w.clientSide }
func (w *World) Dimension() resource.Location { return w.dimension }
func (w *World) Random() *rand.Rand           { return w.rng }

// SpawnPoint возвращает точку спавна мира
func (w *World) SpawnPoint() vec.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.spawnPoint
}

// SetSpawnPoint переносит точку спавна
func (w *World) SetSpawnPoint(pos vec.Vec3) {
	w.mu.Lock()
	w.spawnPoint = pos
	w.mu.Unlock()
}

// CurrentTick возвращает номер текущего тика
func (w *World) CurrentTick() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentTick
}

// BlockAt возвращает блок в позиции; пустое место - воздух
func (w *World) BlockAt(pos vec.Vec3) block.BlockID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.blocks[pos]
}

// SetBlock ставит блок. Замена спаунера уничтожает его блок-сущность,
// установка спаунера создаёт новую с логикой по умолчанию.
func (w *World) SetBlock(pos vec.Vec3, id block.BlockID) {
	w.setBlock(pos, id, resource.Location{})
}

// PlaceSpawner ставит спаунер указанного моба и возвращает его блок-сущность
func (w *World) PlaceSpawner(pos vec.Vec3, entityType resource.Location) *SpawnerEntity {
	return w.setBlock(pos, block.SpawnerBlockID, entityType)
}

func (w *World) setBlock(pos vec.Vec3, id block.BlockID, entityType resource.Location) *SpawnerEntity {
	w.mu.Lock()
	removed := w.spawners[pos]
	delete(w.spawners, pos)
	if id == block.AirBlockID {
		delete(w.blocks, pos)
	} else {
		w.blocks[pos] = id
	}

	var created *SpawnerEntity
	if behavior, ok := block.Get(id); ok && behavior.HasBlockEntity() && id == block.SpawnerBlockID {
		created = &SpawnerEntity{pos: pos, logic: NewSpawnerLogic(entityType)}
		w.spawners[pos] = created
	}
	w.mu.Unlock()

	if err := w.chunks.Discard(pos); err != nil {
		w.log.Warn("Не удалось забыть выгруженный спаунер %v: %v", pos, err)
	}

	listeners := w.listenersSnapshot()
	if removed != nil {
		for _, l := range listeners {
			l.SpawnerRemoved(w, removed)
		}
	}
	if created != nil {
		for _, l := range listeners {
			l.SpawnerLoaded(w, created)
		}
	}
	return created
}

// SpawnerAt реализует spawner.World
func (w *World) SpawnerAt(pos vec.Vec3) (spawner.Spawner, bool) {
	sp, ok := w.SpawnerEntityAt(pos)
	if !ok {
		return nil, false
	}
	return sp, true
}

// SpawnerEntityAt возвращает загруженную блок-сущность спаунера
func (w *World) SpawnerEntityAt(pos vec.Vec3) (*SpawnerEntity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sp, ok := w.spawners[pos]
	return sp, ok
}

// Spawners возвращает загруженные спаунеры, отсортированные по позиции
func (w *World) Spawners() []*SpawnerEntity {
	w.mu.RLock()
	out := make([]*SpawnerEntity, 0, len(w.spawners))
	for _, sp := range w.spawners {
		out = append(out, sp)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].pos, out[j].pos
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

// UnloadChunk выгружает спаунеры чанка, сохраняя их логику в хранилище чанков.
// Если хранилище не приняло чанк, спаунеры остаются загруженными.
func (w *World) UnloadChunk(chunk vec.Vec2) int {
	w.mu.RLock()
	tags := make(map[vec.Vec3]block.Metadata)
	for pos, sp := range w.spawners {
		if pos.ToVec2().ToChunkCoords() != chunk {
			continue
		}
		tag := block.Metadata{}
		sp.logic.Save(tag)
		tags[pos] = tag
	}
	w.mu.RUnlock()
	if len(tags) == 0 {
		return 0
	}

	if err := w.chunks.Put(chunk, tags); err != nil {
		w.log.Error("Не удалось выгрузить чанк %v: %v", chunk, err)
		return 0
	}

	w.mu.Lock()
	unloaded := make([]*SpawnerEntity, 0, len(tags))
	for pos := range tags {
		if sp, ok := w.spawners[pos]; ok {
			delete(w.spawners, pos)
			unloaded = append(unloaded, sp)
		}
	}
	w.mu.Unlock()

	for _, l := range w.listenersSnapshot() {
		for _, sp := range unloaded {
			l.SpawnerUnloaded(w, sp)
		}
	}
	return len(unloaded)
}

// LoadChunk восстанавливает выгруженные спаунеры чанка
func (w *World) LoadChunk(chunk vec.Vec2) int {
	tags, err := w.chunks.Take(chunk)
	if err != nil {
		w.log.Error("Не удалось загрузить чанк %v: %v", chunk, err)
		return 0
	}

	w.mu.Lock()
	loaded := make([]*SpawnerEntity, 0, len(tags))
	for pos, tag := range tags {
		// Блок успели заменить, пока чанк был выгружен
		if w.blocks[pos] != block.SpawnerBlockID {
			continue
		}
		logic := &SpawnerLogic{}
		logic.Load(tag)
		sp := &SpawnerEntity{pos: pos, logic: logic}
		w.spawners[pos] = sp
		loaded = append(loaded, sp)
	}
	w.mu.Unlock()

	for _, l := range w.listenersSnapshot() {
		for _, sp := range loaded {
			l.SpawnerLoaded(w, sp)
		}
	}
	return len(loaded)
}

// BreakBlock разрушает блок игроком и возвращает выпавший опыт
func (w *World) BreakBlock(pos vec.Vec3) int {
	id := w.BlockAt(pos)
	if id == block.AirBlockID {
		return 0
	}

	exp := 0
	if behavior, ok := block.Get(id); ok {
		exp = behavior.BaseExperience()
	}
	ev := &spawner.BreakEvent{World: w, Pos: pos, Block: id, ExpToDrop: exp}
	for _, l := range w.listenersSnapshot() {
		l.BlockBreak(ev)
	}

	w.SetBlock(pos, block.AirBlockID)
	return ev.ExpToDrop
}

// Interact - игрок кликает правой кнопкой по блоку предметом из руки
func (w *World) Interact(p *Player, pos vec.Vec3, hand spawner.Hand, stack *spawner.ItemStack) *spawner.InteractEvent {
	ev := &spawner.InteractEvent{World: w, Pos: pos, Hand: hand, Stack: stack}
	if p != nil {
		ev.Player = p
	}
	for _, l := range w.listenersSnapshot() {
		l.RightClickBlock(ev)
	}
	return ev
}

// Login добавляет игрока в мир в указанной точке
func (w *World) Login(name string, pos vec.Vec3Float) *Player {
	p := &Player{Name: name, Pos: pos}
	w.mu.Lock()
	w.players[name] = p
	w.mu.Unlock()

	w.log.Info("Игрок %s вошёл в мир %s", name, w.dimension)
	for _, l := range w.listenersSnapshot() {
		l.PlayerLoggedIn(w, p)
	}
	return p
}

// Logout удаляет игрока
func (w *World) Logout(name string) {
	w.mu.Lock()
	delete(w.players, name)
	w.mu.Unlock()
}

func (w *World) playerList() []*Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return out
}

// AddParticle запоминает частицу; хранятся только последние MaxParticles
func (w *World) AddParticle(kind string, pos vec.Vec3Float, velocity vec.Vec3Float) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.particles = append(w.particles, Particle{Kind: kind, Pos: pos, Velocity: velocity})
	if over := len(w.particles) - w.maxParticles; over > 0 {
		w.particles = append(w.particles[:0], w.particles[over:]...)
	}
}

// Particles возвращает копию накопленных частиц
func (w *World) Particles() []Particle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Particle, len(w.particles))
	copy(out, w.particles)
	return out
}

// SpawnNatural создаёт моба не из спаунера
func (w *World) SpawnNatural(entityType resource.Location, at vec.Vec3Float) {
	w.spawnMob(entityType, at, nil)
}

func (w *World) spawnMob(entityType resource.Location, at vec.Vec3Float, sp *SpawnerEntity) {
	ev := spawner.SpawnEvent{World: w, Reason: spawner.ReasonNatural, EntityType: entityType}
	var origin *vec.Vec3
	if sp != nil {
		ev.Reason = spawner.ReasonSpawner
		ev.Spawner = sp
		pos := sp.pos
		origin = &pos
	}
	for _, l := range w.listenersSnapshot() {
		l.MobSpawning(ev)
	}

	w.mu.Lock()
	w.nextEntityID++
	id := w.nextEntityID
	w.mobs[id] = &mobEntry{
		mob:  Mob{ID: id, Type: entityType, Pos: at, Spawner: origin},
		born: w.currentTick,
	}
	w.mu.Unlock()
}

// countMobs считает мобов типа в радиусе от точки
func (w *World) countMobs(entityType resource.Location, center vec.Vec3Float, radius float64) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, e := range w.mobs {
		if e.mob.Type == entityType && e.mob.Pos.DistanceTo(center) <= radius {
			n++
		}
	}
	return n
}

// Mobs возвращает копию списка мобов
func (w *World) Mobs() []Mob {
	w.mu.RLock()
	out := make([]Mob, 0, len(w.mobs))
	for _, e := range w.mobs {
		out = append(out, e.mob)
	}
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// KillMobs удаляет всех мобов
func (w *World) KillMobs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.mobs)
	w.mobs = make(map[uint64]*mobEntry)
	return n
}

func (w *World) despawn() {
	if w.mobLifetime == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, e := range w.mobs {
		if w.currentTick-e.born >= w.mobLifetime {
			delete(w.mobs, id)
		}
	}
}

// Enqueue ставит команду в очередь потока тиков
func (w *World) Enqueue(fn func(*World)) error {
	select {
	case w.commands <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do выполняет команду в потоке тиков и ждёт её завершения
func (w *World) Do(ctx context.Context, fn func(*World)) error {
	done := make(chan struct{})
	if err := w.Enqueue(func(w *World) {
		defer close(done)
		fn(w)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *World) drainCommands() {
	for {
		select {
		case fn := <-w.commands:
			fn(w)
		default:
			return
		}
	}
}

// Tick выполняет один тик: команды, тики спаунеров, деспавн мобов
func (w *World) Tick() {
	w.mu.Lock()
	w.currentTick++
	w.mu.Unlock()

	w.drainCommands()

	listeners := w.listenersSnapshot()
	for _, sp := range w.Spawners() {
		for _, l := range listeners {
			l.SpawnerTick(w, sp)
		}
		if !w.clientSide {
			sp.logic.serverTick(w, sp)
		}
	}

	w.despawn()
}

// Save рассылает событие сохранения мира
func (w *World) Save() {
	for _, l := range w.listenersSnapshot() {
		l.WorldSave(w)
	}
}

// Run крутит тики с частотой tickRate в секунду до отмены контекста.
// Каждые saveEvery выполняется сохранение; при остановке - финальное сохранение.
func (w *World) Run(ctx context.Context, tickRate int, saveEvery time.Duration) {
	if tickRate <= 0 {
		tickRate = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	var saveC <-chan time.Time
	if saveEvery > 0 {
		saveTicker := time.NewTicker(saveEvery)
		defer saveTicker.Stop()
		saveC = saveTicker.C
	}

	w.log.Info("Мир %s запущен: %d тиков/с", w.dimension, tickRate)
	for {
		select {
		case <-ctx.Done():
			w.drainCommands()
			w.Save()
			w.log.Info("Мир %s остановлен на тике %d", w.dimension, w.CurrentTick())
			return
		case <-ticker.C:
			w.Tick()
		case <-saveC:
			w.Save()
		}
	}
}
