package cons

import "fmt"

// 房间 key 规则：user:<userId> / recipe:<recipeId>。
// 房间不落库，只存在于各实例的内存成员表里；跨实例靠 Redis backplane 按同样的 key 对齐。

func UserRoom(userID uint64) string {
	return fmt.Sprintf("user:%d", userID)
}

func RecipeRoom(recipeID uint64) string {
	return fmt.Sprintf("recipe:%d", recipeID)
}
