package ga

import (
	"math/rand"
	"testing"
)

func TestRoutesDecode(t *testing.T) {
	// 7 jobs over 3 vehicles with lengths 3,2,2.
	c := newChromosome([]int{1, 3, 2, 4, 5, 6, 7, 3, 2, 2}, 7)
	routes := c.Routes()
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}
	want := [][]int{{1, 3, 2}, {4, 5}, {6, 7}}
	for v := range want {
		if len(routes[v]) != len(want[v]) {
			t.Fatalf("route %d: got %v, want %v", v, routes[v], want[v])
		}
		for i := range want[v] {
			if routes[v][i] != want[v][i] {
				t.Fatalf("route %d: got %v, want %v", v, routes[v], want[v])
			}
		}
	}
	if s, e := c.routeSpan(1); s != 3 || e != 5 {
		t.Fatalf("routeSpan(1) = [%d,%d), want [3,5)", s, e)
	}
}

func TestRoutesDecodeEmptyRoutes(t *testing.T) {
	c := newChromosome([]int{9, 8, 0, 2, 0}, 2)
	routes := c.Routes()
	if len(routes[0]) != 0 || len(routes[2]) != 0 {
		t.Fatalf("expected empty first and last routes, got %v", routes)
	}
	if len(routes[1]) != 2 {
		t.Fatalf("middle route: got %v", routes[1])
	}
}

func TestRandomVehicleSegmentSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(6)
		total := rng.Intn(30)
		seg := randomVehicleSegment(rng, n, total)
		if len(seg) != n {
			t.Fatalf("got %d entries, want %d", len(seg), n)
		}
		sum := 0
		for _, v := range seg {
			if v < 0 {
				t.Fatalf("negative entry in %v", seg)
			}
			sum += v
		}
		if sum != total {
			t.Fatalf("segment %v sums to %d, want %d", seg, sum, total)
		}
	}
}

func TestRandomVehicleSegmentDegenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if seg := randomVehicleSegment(rng, 0, 5); len(seg) != 0 {
		t.Fatalf("n=0: got %v", seg)
	}
	if seg := randomVehicleSegment(rng, 1, 5); len(seg) != 1 || seg[0] != 5 {
		t.Fatalf("n=1: got %v, want [5]", seg)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := newChromosome([]int{1, 2, 3, 3}, 3)
	d := c.Clone()
	d.JobSegment()[0] = 99
	if c.JobSegment()[0] != 1 {
		t.Fatal("clone shares gene storage with original")
	}
}
