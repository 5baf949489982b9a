package service

import (
	"math/rand/v2"

	"campusinterview/internal/model"
)

// SelectTopics picks up to total distinct topics, first one per scene, then
// one per dimension still missing, then uniformly from what is left. The
// result is shuffled. The same seed always yields the same selection.
//
// On a full scene x dimension grid the result covers every scene once total
// reaches len(scenes), and every dimension once it reaches len(eduTypes).
func SelectTopics(topics []model.Topic, scenes []model.Scene, eduTypes []model.EduType, total int, seed uint64) []model.Topic {
	if total <= 0 || len(topics) == 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	byScene := make(map[model.Scene][]int)
	byEdu := make(map[model.EduType][]int)
	for i, t := range topics {
		byScene[t.Scene] = append(byScene[t.Scene], i)
		byEdu[t.EduType] = append(byEdu[t.EduType], i)
	}

	used := make(map[string]bool, total)
	picked := make([]int, 0, total)
	take := func(i int) {
		used[topics[i].Name] = true
		picked = append(picked, i)
	}

	// one per scene, preferring a dimension no earlier pick has covered
	covered := make(map[model.EduType]bool)
	for _, scene := range scenes {
		if len(picked) >= total {
			break
		}
		candidates := unused(topics, byScene[scene], used)
		if len(candidates) == 0 {
			continue
		}
		if fresh := uncovered(topics, candidates, covered); len(fresh) > 0 {
			candidates = fresh
		}
		i := candidates[rng.IntN(len(candidates))]
		take(i)
		covered[topics[i].EduType] = true
	}

	// dimensions not yet covered
	for _, edu := range eduTypes {
		if len(picked) >= total {
			break
		}
		if covered[edu] {
			continue
		}
		candidates := unused(topics, byEdu[edu], used)
		if len(candidates) == 0 {
			continue
		}
		take(candidates[rng.IntN(len(candidates))])
		covered[edu] = true
	}

	// fill from the remaining pool
	if len(picked) < total {
		all := make([]int, len(topics))
		for i := range all {
			all[i] = i
		}
		rest := unused(topics, all, used)
		rng.Shuffle(len(rest), func(a, b int) { rest[a], rest[b] = rest[b], rest[a] })
		for _, i := range rest {
			if len(picked) >= total {
				break
			}
			take(i)
		}
	}

	rng.Shuffle(len(picked), func(a, b int) { picked[a], picked[b] = picked[b], picked[a] })
	out := make([]model.Topic, len(picked))
	for n, i := range picked {
		out[n] = topics[i]
	}
	return out
}

func unused(topics []model.Topic, idx []int, used map[string]bool) []int {
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if !used[topics[i].Name] {
			out = append(out, i)
		}
	}
	return out
}

func uncovered(topics []model.Topic, idx []int, covered map[model.EduType]bool) []int {
	var out []int
	for _, i := range idx {
		if !covered[topics[i].EduType] {
			out = append(out, i)
		}
	}
	return out
}
