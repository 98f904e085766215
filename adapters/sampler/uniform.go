package sampler

import (
	"math/rand/v2"

	"ezrecover/domain/ezdiffusion"
	"ezrecover/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// UniformSampler draws each latent parameter independently and uniformly
// from its interval.
type UniformSampler struct {
	ranges ezdiffusion.ParameterRanges
}

var _ ports.ParameterSamplerPort = (*UniformSampler)(nil)

// NewUniformSampler validates the ranges and returns a sampler over them
func NewUniformSampler(ranges ezdiffusion.ParameterRanges) (*UniformSampler, error) {
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	return &UniformSampler{ranges: ranges}, nil
}

// NewDefaultSampler samples the fixed simulate-and-recover intervals
func NewDefaultSampler() *UniformSampler {
	return &UniformSampler{ranges: ezdiffusion.DefaultParameterRanges()}
}

// Ranges returns the sampling intervals
func (s *UniformSampler) Ranges() ezdiffusion.ParameterRanges {
	return s.ranges
}

// Sample draws boundary separation, drift rate and non-decision time, in that
// order, from src.
func (s *UniformSampler) Sample(src rand.Source) ezdiffusion.LatentParameters {
	a := dist(s.ranges.BoundarySeparation, src).Rand()
	v := dist(s.ranges.DriftRate, src).Rand()
	t := dist(s.ranges.NondecisionTime, src).Rand()
	return ezdiffusion.LatentParameters{
		DriftRate:          v,
		BoundarySeparation: a,
		NondecisionTime:    t,
	}
}

func dist(i ezdiffusion.Interval, src rand.Source) distuv.Uniform {
	return distuv.Uniform{Min: i.Min, Max: i.Max, Src: src}
}
