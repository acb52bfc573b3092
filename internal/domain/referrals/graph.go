package referrals

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("client not found")
)

// Node es cualquier registro que participa en el grafo de referidos.
// ReferrerKey vacío = sin referidor.
type Node interface {
	NodeKey() string
	ReferrerKey() string
}

// DirectOf devuelve los clientes cuyo referidor es clientID.
// Escaneo lineal sobre all, sin índice (volumen de una sola clínica).
func DirectOf[T Node](clientID string, all []T) []T {
	clientID = strings.TrimSpace(clientID)
	out := make([]T, 0)
	if clientID == "" {
		return out
	}
	for _, c := range all {
		if c.ReferrerKey() == clientID {
			out = append(out, c)
		}
	}
	return out
}

// SecondLevelOf devuelve los referidos de cada referido directo, sin repetir
// (semántica de conjunto, para mostrar). El orden es el de primera aparición.
func SecondLevelOf[T Node](clientID string, all []T) []T {
	seen := map[string]struct{}{}
	out := make([]T, 0)
	for _, d := range DirectOf(clientID, all) {
		for _, s := range DirectOf(d.NodeKey(), all) {
			if _, ok := seen[s.NodeKey()]; ok {
				continue
			}
			seen[s.NodeKey()] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func DirectCount[T Node](clientID string, all []T) int {
	return len(DirectOf(clientID, all))
}

// SecondLevelCount suma, por cada referido directo, su propia cantidad de
// referidos directos. Es una suma por camino, NO el tamaño del conjunto
// de SecondLevelOf; las recompensas se calculan sobre este número.
func SecondLevelCount[T Node](clientID string, all []T) int {
	total := 0
	for _, d := range DirectOf(clientID, all) {
		total += DirectCount(d.NodeKey(), all)
	}
	return total
}

// Summary es la vista de árbol de referidos (dos niveles) de un cliente.
type Summary[T Node] struct {
	Direct           []T
	SecondLevel      []T
	DirectCount      int
	SecondLevelCount int
}

// Summarize falla con ErrNotFound si clientID no está en all.
func Summarize[T Node](clientID string, all []T) (Summary[T], error) {
	if !Contains(clientID, all) {
		return Summary[T]{}, ErrNotFound
	}
	direct := DirectOf(clientID, all)

	second := 0
	for _, d := range direct {
		second += DirectCount(d.NodeKey(), all)
	}

	return Summary[T]{
		Direct:           direct,
		SecondLevel:      SecondLevelOf(clientID, all),
		DirectCount:      len(direct),
		SecondLevelCount: second,
	}, nil
}

func Contains[T Node](clientID string, all []T) bool {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return false
	}
	for _, c := range all {
		if c.NodeKey() == clientID {
			return true
		}
	}
	return false
}
