package repositories

import "orderdesk-api/internal/adapters/persistence/models"

// Attachable relation fields
const (
	FieldProductIDs   = "productIds"
	FieldMenuIDs      = "menuIds"
	FieldPromotionIDs = "promotionIds"
	FieldRoleIDs      = "roleIds"
	FieldUserIDs      = "userIds"
)

// UserDescriptor: roleIds -> role_mappings
var UserDescriptor = Descriptor{
	Relations: []Relation{
		{Field: FieldRoleIDs, JoinTable: models.TableRoleMappings, OwnerKey: "user_id", TargetKey: "role_id", Target: "roles"},
	},
	Dependents: []JoinColumn{
		{Table: models.TableRoleMappings, Column: "user_id"},
		{Table: "access_tokens", Column: "user_id"},
	},
	Nullify: []JoinColumn{
		{Table: "orders", Column: "user_id"},
	},
}

// RoleDescriptor: userIds -> role_mappings
var RoleDescriptor = Descriptor{
	Relations: []Relation{
		{Field: FieldUserIDs, JoinTable: models.TableRoleMappings, OwnerKey: "role_id", TargetKey: "user_id", Target: "users"},
	},
	Dependents: []JoinColumn{
		{Table: models.TableRoleMappings, Column: "role_id"},
	},
}

// ProductDescriptor: menuIds -> product_menus, promotionIds -> promotion_products
var ProductDescriptor = Descriptor{
	Relations: []Relation{
		{Field: FieldMenuIDs, JoinTable: models.TableProductMenus, OwnerKey: "product_id", TargetKey: "menu_id", Target: "menus"},
		{Field: FieldPromotionIDs, JoinTable: models.TablePromotionProducts, OwnerKey: "product_id", TargetKey: "promotion_id", Target: "promotions"},
	},
	Dependents: []JoinColumn{
		{Table: models.TableProductMenus, Column: "product_id"},
		{Table: models.TableOrderProducts, Column: "product_id"},
		{Table: models.TablePromotionProducts, Column: "product_id"},
	},
}

// MenuDescriptor: productIds -> product_menus, promotionIds -> promotion_menus
var MenuDescriptor = Descriptor{
	Relations: []Relation{
		{Field: FieldProductIDs, JoinTable: models.TableProductMenus, OwnerKey: "menu_id", TargetKey: "product_id", Target: "products"},
		{Field: FieldPromotionIDs, JoinTable: models.TablePromotionMenus, OwnerKey: "menu_id", TargetKey: "promotion_id", Target: "promotions"},
	},
	Dependents: []JoinColumn{
		{Table: models.TableProductMenus, Column: "menu_id"},
		{Table: models.TableOrderMenus, Column: "menu_id"},
		{Table: models.TablePromotionMenus, Column: "menu_id"},
	},
}

// PromotionDescriptor: productIds -> promotion_products, menuIds -> promotion_menus
var PromotionDescriptor = Descriptor{
	Relations: []Relation{
		{Field: FieldProductIDs, JoinTable: models.TablePromotionProducts, OwnerKey: "promotion_id", TargetKey: "product_id", Target: "products"},
		{Field: FieldMenuIDs, JoinTable: models.TablePromotionMenus, OwnerKey: "promotion_id", TargetKey: "menu_id", Target: "menus"},
	},
	Dependents: []JoinColumn{
		{Table: models.TablePromotionProducts, Column: "promotion_id"},
		{Table: models.TablePromotionMenus, Column: "promotion_id"},
	},
}

// OrderDescriptor: productIds -> order_products, menuIds -> order_menus
var OrderDescriptor = Descriptor{
	Relations: []Relation{
		{Field: FieldProductIDs, JoinTable: models.TableOrderProducts, OwnerKey: "order_id", TargetKey: "product_id", Target: "products"},
		{Field: FieldMenuIDs, JoinTable: models.TableOrderMenus, OwnerKey: "order_id", TargetKey: "menu_id", Target: "menus"},
	},
	Dependents: []JoinColumn{
		{Table: models.TableOrderProducts, Column: "order_id"},
		{Table: models.TableOrderMenus, Column: "order_id"},
	},
}
