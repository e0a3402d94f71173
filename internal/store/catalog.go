package store

import (
	"fmt"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Catalog holds movies in insertion order. Ids come from a counter that
// starts one past the highest id loaded.
type Catalog struct {
	movies map[int]*model.Movie
	order  []int
	nextID int
}

func NewCatalog() *Catalog {
	return &Catalog{movies: make(map[int]*model.Movie), nextID: 1}
}

// AddMovie stores a new movie with the next sequential id.
func (c *Catalog) AddMovie(title, genre string, price model.Money) model.Movie {
	m := &model.Movie{ID: c.nextID, Title: title, Genre: genre, Price: price}
	c.nextID++
	c.movies[m.ID] = m
	c.order = append(c.order, m.ID)
	return m.Clone()
}

// Put inserts a movie with its existing id, replacing any movie with that
// id. The id counter moves past it.
func (c *Catalog) Put(m model.Movie) {
	if _, exists := c.movies[m.ID]; !exists {
		c.order = append(c.order, m.ID)
	}
	cp := m.Clone()
	c.movies[m.ID] = &cp
	if m.ID >= c.nextID {
		c.nextID = m.ID + 1
	}
}

func (c *Catalog) Get(id int) (model.Movie, bool) {
	m, ok := c.movies[id]
	if !ok {
		return model.Movie{}, false
	}
	return m.Clone(), true
}

// List returns copies of all movies in insertion order.
func (c *Catalog) List() []model.Movie {
	out := make([]model.Movie, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.movies[id].Clone())
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

// EditMovie updates title, genre and price. An empty title or genre keeps
// the current value, as does a price <= 0.
func (c *Catalog) EditMovie(id int, title, genre string, price model.Money) (model.Movie, error) {
	m, ok := c.movies[id]
	if !ok {
		return model.Movie{}, fmt.Errorf("%w: movie %d", model.ErrNotFound, id)
	}
	if title != "" {
		m.Title = title
	}
	if genre != "" {
		m.Genre = genre
	}
	if price > 0 {
		m.Price = price
	}
	return m.Clone(), nil
}

// AddSchedule appends a showing to the movie.
func (c *Catalog) AddSchedule(id int, s model.Schedule) error {
	m, ok := c.movies[id]
	if !ok {
		return fmt.Errorf("%w: movie %d", model.ErrNotFound, id)
	}
	m.Schedules = append(m.Schedules, s)
	return nil
}

// ScheduleAt returns the showing at a zero-based position.
func (c *Catalog) ScheduleAt(id, index int) (model.Schedule, error) {
	m, ok := c.movies[id]
	if !ok {
		return model.Schedule{}, fmt.Errorf("%w: movie %d", model.ErrNotFound, id)
	}
	if index < 0 || index >= len(m.Schedules) {
		return model.Schedule{}, fmt.Errorf("%w: schedule %d of movie %d", model.ErrNotFound, index, id)
	}
	return m.Schedules[index], nil
}

// RemoveSchedule deletes the showing at a zero-based position and returns it.
func (c *Catalog) RemoveSchedule(id, index int) (model.Schedule, error) {
	s, err := c.ScheduleAt(id, index)
	if err != nil {
		return model.Schedule{}, err
	}
	m := c.movies[id]
	m.Schedules = append(m.Schedules[:index], m.Schedules[index+1:]...)
	return s, nil
}

// Delete removes the movie and returns it.
func (c *Catalog) Delete(id int) (model.Movie, bool) {
	m, ok := c.movies[id]
	if !ok {
		return model.Movie{}, false
	}
	delete(c.movies, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return *m, true
}

// Clone returns a deep copy including the id counter.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		movies: make(map[int]*model.Movie, len(c.movies)),
		order:  append([]int(nil), c.order...),
		nextID: c.nextID,
	}
	for id, m := range c.movies {
		cp := m.Clone()
		out.movies[id] = &cp
	}
	return out
}
