package registration

import (
	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// seatDeltas は（申込種類, ロール）ごとの残席の増減
// 管理者・スタッフの本人申込は引率扱いのため席を消費しない
var seatDeltas = map[Kind]map[user.Role]int{
	KindChild: {
		user.RoleAdmin:    -1,
		user.RoleStaff:    -1,
		user.RoleUser:     -1,
		user.RoleAttendee: -1,
	},
	KindSelf: {
		user.RoleAdmin:    0,
		user.RoleStaff:    0,
		user.RoleUser:     -1,
		user.RoleAttendee: -1,
	},
}

// SeatDelta は申込1件あたりの残席の増減を返す
// 未知のロールは一般参加者として扱う
func SeatDelta(kind Kind, role user.Role) int {
	if d, ok := seatDeltas[kind][role]; ok {
		return d
	}
	return -1
}

// ServicesCost は選択された追加サービスの合計金額（最小通貨単位）を返す
// 範囲外のインデックスと上限外の価格は無視する
func ServicesCost(services []event.ExtraService, indices []int) int64 {
	var total int64
	for _, i := range normalizeIndices(indices) {
		if i < 0 || i >= len(services) {
			continue
		}
		price := services[i].PriceCents
		if price < 0 || price > event.MaxPriceCents {
			continue
		}
		total += price
	}
	return total
}
