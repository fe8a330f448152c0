package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func won(v int64) *int64 {
	return &v
}

func TestResolveAmount(t *testing.T) {
	tests := []struct {
		name string
		c    Contract
		mode Mode
		want int64
	}{
		{
			name: "order mode prefers cumulative total",
			c:    Contract{Amount: won(100), TotalAmount: won(150)},
			mode: ModeOrder,
			want: 150,
		},
		{
			name: "order mode falls back to current amount",
			c:    Contract{Amount: won(100)},
			mode: ModeOrder,
			want: 100,
		},
		{
			name: "order mode with no amounts is zero",
			c:    Contract{},
			mode: ModeOrder,
			want: 0,
		},
		{
			name: "revenue mode ignores cumulative total",
			c:    Contract{Amount: won(100), TotalAmount: won(150)},
			mode: ModeRevenue,
			want: 100,
		},
		{
			name: "revenue mode with no current amount is zero",
			c:    Contract{TotalAmount: won(150)},
			mode: ModeRevenue,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAmount(&tt.c, tt.mode))
		})
	}
}

func TestEffectiveYear(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		c    Contract
		mode Mode
		want int
	}{
		{
			name: "order mode prefers start date",
			c:    Contract{ContractDate: date(2022, 12, 20), StartDate: date(2023, 1, 5)},
			mode: ModeOrder,
			want: 2023,
		},
		{
			name: "order mode falls back to contract date",
			c:    Contract{ContractDate: date(2022, 12, 20)},
			mode: ModeOrder,
			want: 2022,
		},
		{
			name: "order mode falls back to current year",
			c:    Contract{},
			mode: ModeOrder,
			want: 2024,
		},
		{
			name: "revenue mode always uses contract date",
			c:    Contract{ContractDate: date(2022, 12, 20), StartDate: date(2023, 1, 5)},
			mode: ModeRevenue,
			want: 2022,
		},
		{
			name: "revenue mode falls back to current year",
			c:    Contract{StartDate: date(2023, 1, 5)},
			mode: ModeRevenue,
			want: 2024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveYear(&tt.c, tt.mode, now))
		})
	}
}

func TestResolveShareRatio(t *testing.T) {
	roster := []Partner{
		{Name: "한화건설(주)", ShareRatio: 30},
		{Name: "대림산업(주)", ShareRatio: 70},
	}

	assert.Equal(t, 30.0, ResolveShareRatio(roster, "한화건설"))
	assert.Equal(t, 70.0, ResolveShareRatio(roster, "대림산업(주)"))

	// Sole contractor: no roster entry defaults to the full stake
	assert.Equal(t, DefaultShareRatio, ResolveShareRatio(nil, "한화건설"))
	assert.Equal(t, DefaultShareRatio, ResolveShareRatio(roster, "현대건설"))
}

func TestResolveJointType(t *testing.T) {
	assert.Equal(t, "", ResolveJointType(nil))

	roster := []Partner{
		{Name: "A", JointType: ""},
		{Name: "B", JointType: JointExecution},
	}
	assert.Equal(t, JointExecution, ResolveJointType(roster))
}

func TestResolvePartnerRole(t *testing.T) {
	c := Contract{PrimeContractor: "한화건설(주)"}

	// Roster's own label wins
	roster := []Partner{{Name: "한화건설(주)", PartnerType: "대표자"}}
	assert.Equal(t, "대표자", ResolvePartnerRole(&c, roster, "한화건설"))

	// Synthesized: prime contractor
	assert.Equal(t, RolePrime, ResolvePartnerRole(&c, nil, "한화건설"))

	// Synthesized: joint participant
	assert.Equal(t, RoleMember, ResolvePartnerRole(&c, nil, "대림산업"))
}

func TestIsJoint(t *testing.T) {
	assert.False(t, IsJoint(nil))
	assert.False(t, IsJoint([]Partner{{Name: "A"}}))
	assert.True(t, IsJoint([]Partner{{Name: "A"}, {Name: "B"}}))
}

func TestIsModified(t *testing.T) {
	tests := []struct {
		name string
		c    Contract
		want bool
	}{
		{
			name: "different years",
			c:    Contract{ContractDate: date(2022, 12, 20), StartDate: date(2023, 1, 5)},
			want: true,
		},
		{
			name: "same year",
			c:    Contract{ContractDate: date(2023, 3, 1), StartDate: date(2023, 1, 1)},
			want: false,
		},
		{
			name: "missing start date",
			c:    Contract{ContractDate: date(2023, 3, 1)},
			want: false,
		},
		{
			name: "missing both",
			c:    Contract{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsModified(&tt.c))
		})
	}
}

func TestCanonicalNo(t *testing.T) {
	c := Contract{ContractNos: []string{"C001", "C002"}}
	assert.Equal(t, "C001", c.CanonicalNo())

	empty := Contract{}
	assert.Equal(t, "", empty.CanonicalNo())
}
