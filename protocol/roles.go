package protocol

// Role 角色名称，与服务端下发的字符串一致
type Role string

const (
	RoleMerlin   Role = "Merlin"
	RolePercival Role = "Percival"
	RoleServant  Role = "Loyal Servant of Arthur"
	RoleMordred  Role = "Mordred"
	RoleMorgana  Role = "Morgana"
	RoleOberon   Role = "Oberon"
	RoleMinion   Role = "Minion of Mordred"
)

var GoodRoles = map[Role]bool{
	RoleMerlin:   true,
	RolePercival: true,
	RoleServant:  true,
}

var EvilRoles = map[Role]bool{
	RoleMordred: true,
	RoleMorgana: true,
	RoleOberon:  true,
	RoleMinion:  true,
}

func (r Role) IsGood() bool {
	return GoodRoles[r]
}

func (r Role) IsEvil() bool {
	return EvilRoles[r]
}

// Known reports whether the role string is part of the fixed vocabulary.
// Snapshots hide other players' roles by omitting the field, so the
// empty string is expected and not an error.
func (r Role) Known() bool {
	return r.IsGood() || r.IsEvil()
}

// QuestSizes 每局任务所需队伍人数表，按总人数索引，下标 0-4 对应第 1-5 轮
var QuestSizes = map[int][5]int{
	5:  {2, 3, 2, 3, 3},
	6:  {2, 3, 4, 3, 4},
	7:  {2, 3, 3, 4, 4},
	8:  {3, 4, 4, 5, 5},
	9:  {3, 4, 4, 5, 5},
	10: {3, 4, 4, 5, 5},
}

const (
	MinPlayers = 5
	MaxPlayers = 10
	MaxRounds  = 5
)

// RequiredTeamSize returns the team size for the given participant count
// and 1-indexed round, or 0 when either is outside the fixed table.
func RequiredTeamSize(players, round int) int {
	sizes, ok := QuestSizes[players]
	if !ok || round < 1 || round > MaxRounds {
		return 0
	}
	return sizes[round-1]
}

// TwoFailsRequired reports whether the quest needs two fail cards to
// fail. Only round four at seven or more players.
func TwoFailsRequired(players, round int) bool {
	return players >= 7 && round == 4
}
