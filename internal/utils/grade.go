package utils

import (
	"errors"
	"math"
)

var (
	ErrNoSubjects    = errors.New("최소 한 과목은 입력해야 합니다.")
	ErrInvalidCredit = errors.New("단위수는 1 이상이어야 합니다.")
	ErrInvalidGrade  = errors.New("등급은 1~9 사이여야 합니다.")
)

type GradeSubject struct {
	Name   string `json:"name"`
	Credit int    `json:"credit"`
	Grade  int    `json:"grade"`
}

type GradeResult struct {
	TotalCredits  int     `json:"totalCredits"`
	WeightedGrade float64 `json:"weightedGrade"`
}

// CalculateGrade returns the credit-weighted average grade, rounded to two decimals.
func CalculateGrade(subjects []GradeSubject) (GradeResult, error) {
	if len(subjects) == 0 {
		return GradeResult{}, ErrNoSubjects
	}

	var totalCredits, weightedSum int
	for _, s := range subjects {
		if s.Credit < 1 {
			return GradeResult{}, ErrInvalidCredit
		}
		if s.Grade < 1 || s.Grade > 9 {
			return GradeResult{}, ErrInvalidGrade
		}
		totalCredits += s.Credit
		weightedSum += s.Credit * s.Grade
	}

	avg := float64(weightedSum) / float64(totalCredits)
	return GradeResult{
		TotalCredits:  totalCredits,
		WeightedGrade: math.Round(avg*100) / 100,
	}, nil
}
